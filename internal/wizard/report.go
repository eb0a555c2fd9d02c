package wizard

import (
	"io"
	"slices"
	"time"

	"github.com/vchilikov/mediasort/internal/console"
	"github.com/vchilikov/mediasort/internal/dates"
	"github.com/vchilikov/mediasort/internal/organizer"
	"github.com/vchilikov/mediasort/internal/preflight"
)

const (
	statusSuccess        = "SUCCESS"
	statusPartialSuccess = "PARTIAL_SUCCESS"
	statusFailed         = "FAILED"
)

// Report describes one organize command from the menu.
type Report struct {
	RunID                    string
	Status                   string
	ExitCode                 int
	Workdir                  string
	Source                   string
	Destination              string
	DryRun                   bool
	StartedAtLocal           time.Time
	FinishedAtLocal          time.Time
	DetailedReportPath       string
	DetailedReportWriteError string

	Disk        preflight.SpaceCheck
	DiskChecked bool

	Summary  organizer.Summary
	BySource map[dates.Source]int

	ScanDuration    time.Duration
	ProcessDuration time.Duration
	TotalDuration   time.Duration

	ProblemCounts map[string]int
	ProblemSample map[string][]string
}

func (r *Report) addProblem(category string, n int, sample ...string) {
	if r.ProblemCounts == nil {
		r.ProblemCounts = make(map[string]int)
	}
	r.ProblemCounts[category] += n
	if len(sample) == 0 {
		return
	}
	if r.ProblemSample == nil {
		r.ProblemSample = make(map[string][]string)
	}
	current := r.ProblemSample[category]
	limit := 5 - len(current)
	if limit <= 0 {
		return
	}
	if len(sample) < limit {
		limit = len(sample)
	}
	r.ProblemSample[category] = append(current, sample[:limit]...)
}

func printReport(out io.Writer, report Report) {
	console.WriteLine(out, "")
	line := console.Success
	switch report.Status {
	case statusPartialSuccess:
		line = console.Warn
	case statusFailed:
		line = console.Fail
	}
	line(out, "Run result: %s", runResultLabel(report.Status))

	s := report.Summary
	console.Writef(out, "Total files found: %d, copied: %d, already present: %d, unknown date: %d, failed: %d\n",
		s.Found, s.Copied, s.SkippedExisting, s.Unknown, s.Failed)
	if s.Unsupported > 0 {
		console.Writef(out, "Skipped non-image/non-video files: %d\n", s.Unsupported)
	}
	if len(report.BySource) > 0 {
		sources := make([]string, 0, len(report.BySource))
		for src := range report.BySource {
			sources = append(sources, string(src))
		}
		slices.Sort(sources)
		console.WriteLine(out, "Dates taken from:")
		for _, src := range sources {
			console.Writef(out, "  %s: %d\n", src, report.BySource[dates.Source(src)])
		}
	}
	if report.DryRun {
		console.Warn(out, "Dry run: nothing was copied.")
	}

	if report.Status != statusSuccess {
		console.WriteLine(out, "Some files need attention. See the detailed report.")
	}
	if report.DetailedReportPath != "" {
		console.Writef(out, "Detailed report: %s\n", report.DetailedReportPath)
	} else {
		console.WriteLine(out, "Detailed report: unavailable")
	}
	if report.DetailedReportWriteError != "" {
		console.Writef(out, "Report save warning: %s\n", report.DetailedReportWriteError)
	}
}

func runResultLabel(status string) string {
	switch status {
	case statusSuccess:
		return "Completed"
	case statusPartialSuccess:
		return "Completed with issues"
	default:
		return "Failed"
	}
}
