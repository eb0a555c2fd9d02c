// Package organizer copies the photos and videos of a folder tree into
// year/month folders, one resolved date per file.
package organizer

import (
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vchilikov/mediasort/internal/copier"
	"github.com/vchilikov/mediasort/internal/dates"
	"github.com/vchilikov/mediasort/internal/layout"
	"github.com/vchilikov/mediasort/internal/mediaext"
)

const maxProblemSamples = 5

const (
	ProblemCopy     = "copy errors"
	ProblemConflict = "destination conflicts"
	ProblemWalk     = "walk errors"
	ProblemUnknown  = "unknown dates"
	ProblemMetadata = "metadata warnings"
	ProblemSkipped  = "skipped output folders"
)

var (
	copyIfAbsent = copier.CopyIfAbsent
	checkCopy    = copier.Check
)

// DateResolver is satisfied by *dates.Resolver.
type DateResolver interface {
	Resolve(path string, kind mediaext.Kind) dates.Resolution
}

type Options struct {
	// Destination is the output root. Empty means the source folder itself.
	Destination string
	Dates       DateResolver
	DryRun      bool
	Logger      logrus.FieldLogger
}

// Summary holds the per-run tallies. Every found file lands in exactly one of
// Copied, SkippedExisting, Unknown or Failed. Unsupported files are counted
// separately and are not part of Found.
type Summary struct {
	Found           int
	Copied          int
	SkippedExisting int
	Unknown         int
	Failed          int
	Unsupported     int
}

type Report struct {
	Source         string
	Destination    string
	DryRun         bool
	Summary        Summary
	BySource       map[dates.Source]int
	ProblemCounts  map[string]int
	ProblemSamples map[string][]string
}

type ProgressEvent struct {
	Processed int
	Total     int
	Media     string
}

func newReport() Report {
	return Report{
		BySource:       make(map[dates.Source]int),
		ProblemCounts:  make(map[string]int),
		ProblemSamples: make(map[string][]string),
	}
}

// Run organizes source into cfg.Destination. Per-file failures are counted and
// never stop the run; only an unusable source folder returns an error.
func Run(cfg Options, source string, onProgress func(ProgressEvent)) (Report, error) {
	scan, err := Scan(source, cfg.Destination)
	if err != nil {
		report := newReport()
		report.DryRun = cfg.DryRun
		return report, err
	}
	return Organize(cfg, scan, onProgress), nil
}

// Organize processes the files of a finished scan. The output root is the
// scan's destination; cfg.Destination is not consulted.
func Organize(cfg Options, scan ScanResult, onProgress func(ProgressEvent)) Report {
	report := newReport()
	report.DryRun = cfg.DryRun
	report.Source = scan.Root
	report.Destination = scan.Destination
	if report.Destination == "" {
		report.Destination = scan.Root
	}

	log := cfg.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	resolver := cfg.Dates
	if resolver == nil {
		resolver = dates.NewResolver(dates.Options{Logger: log})
	}

	for _, walkErr := range scan.WalkErrors {
		report.addProblem(ProblemWalk, walkErr)
		log.WithField("stage", "walk").Warn(walkErr)
	}
	for _, dir := range scan.Skipped {
		report.addProblem(ProblemSkipped, dir)
		log.WithField("path", dir).Debug("skipping output folder")
	}
	report.Summary.Unsupported = len(scan.Unsupported)
	for _, path := range scan.Unsupported {
		log.WithFields(logrus.Fields{"path": path, "outcome": "unsupported"}).Debug("skipping file")
	}

	total := len(scan.Files)
	log.WithFields(logrus.Fields{
		"source":      report.Source,
		"destination": report.Destination,
		"files":       total,
		"dry_run":     cfg.DryRun,
	}).Info("organize started")

	for i, file := range scan.Files {
		report.Summary.Found++
		processFile(&report, cfg, resolver, log, file)
		notifyProgress(onProgress, i+1, total, file.Path)
	}

	log.WithFields(logrus.Fields{
		"found":   report.Summary.Found,
		"copied":  report.Summary.Copied,
		"skipped": report.Summary.SkippedExisting,
		"unknown": report.Summary.Unknown,
		"failed":  report.Summary.Failed,
	}).Info("organize finished")

	return report
}

func processFile(report *Report, cfg Options, resolver DateResolver, log logrus.FieldLogger, file MediaFile) {
	res := resolver.Resolve(file.Path, file.Kind)
	report.BySource[res.Source]++
	if len(res.Warnings) > 0 {
		report.addProblem(ProblemMetadata, file.Path)
	}

	bucket := layout.Bucket(res)
	dstDir := filepath.Join(report.Destination, bucket)
	entry := log.WithFields(logrus.Fields{
		"path":   file.Path,
		"bucket": bucket,
		"source": res.Source,
	})

	place := copyIfAbsent
	if cfg.DryRun {
		place = checkCopy
	}
	outcome, dst, err := place(file.Path, dstDir)
	if err != nil {
		report.Summary.Failed++
		entry = entry.WithField("outcome", "failed").WithError(err)
		if copier.IsPathTypeConflict(err) {
			report.addProblem(ProblemConflict, file.Path)
			entry.Error("destination name is taken")
			return
		}
		report.addProblem(ProblemCopy, file.Path)
		entry.Error("copy failed")
		return
	}

	label := outcome.String()
	if cfg.DryRun && outcome == copier.Copied {
		label = "DRY"
	}
	entry = entry.WithField("outcome", label)

	if !res.Known {
		report.Summary.Unknown++
		report.addProblem(ProblemUnknown, file.Path)
		entry.Warn("no date found")
		return
	}

	switch outcome {
	case copier.Copied:
		report.Summary.Copied++
		entry.WithField("dest", dst).Info("copied")
	case copier.SkippedExisting:
		report.Summary.SkippedExisting++
		entry.WithField("dest", dst).Info("already present")
	}
}

func notifyProgress(onProgress func(ProgressEvent), processed int, total int, media string) {
	if onProgress == nil || total == 0 {
		return
	}
	onProgress(ProgressEvent{
		Processed: processed,
		Total:     total,
		Media:     media,
	})
}

func (r *Report) addProblem(category string, value string) {
	r.ProblemCounts[category]++
	if len(r.ProblemSamples[category]) < maxProblemSamples {
		r.ProblemSamples[category] = append(r.ProblemSamples[category], value)
	}
}
