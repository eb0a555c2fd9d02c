package wizard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/vchilikov/mediasort/internal/layout"
)

type jsonProblem struct {
	Category string   `json:"category"`
	Count    int      `json:"count"`
	Samples  []string `json:"samples,omitempty"`
}

type jsonReport struct {
	RunID           string         `json:"run_id"`
	Status          string         `json:"status"`
	ExitCode        int            `json:"exit_code"`
	Workdir         string         `json:"workdir"`
	Source          string         `json:"source"`
	Destination     string         `json:"destination"`
	DryRun          bool           `json:"dry_run"`
	StartedAtLocal  string         `json:"started_at_local"`
	FinishedAtLocal string         `json:"finished_at_local"`
	DurationMS      int64          `json:"duration_ms"`
	Disk            *jsonDisk      `json:"disk,omitempty"`
	Files           jsonFiles      `json:"files"`
	DateSources     map[string]int `json:"date_sources,omitempty"`
	TimingsMS       jsonTimingsMS  `json:"timings_ms"`
	Problems        []jsonProblem  `json:"problems,omitempty"`
}

type jsonDisk struct {
	Path           string `json:"path"`
	AvailableBytes uint64 `json:"available_bytes"`
	RequiredBytes  uint64 `json:"required_bytes"`
	Enough         bool   `json:"enough"`
}

type jsonFiles struct {
	Found           int `json:"found"`
	Copied          int `json:"copied"`
	SkippedExisting int `json:"skipped_existing"`
	Unknown         int `json:"unknown"`
	Failed          int `json:"failed"`
	Unsupported     int `json:"unsupported"`
}

type jsonTimingsMS struct {
	Scan    int64 `json:"scan"`
	Process int64 `json:"process"`
	Total   int64 `json:"total"`
}

func writeReportJSONImpl(report Report) (string, error) {
	reportDir := filepath.Join(report.Workdir, layout.StateDir, "reports")
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	reportTime := report.FinishedAtLocal
	if reportTime.IsZero() {
		reportTime = time.Now()
	}
	fileName := fmt.Sprintf("report-%s.json", reportTime.Format("20060102-150405"))
	if len(report.RunID) >= 8 {
		// Several runs can finish within the same second of one session.
		fileName = fmt.Sprintf("report-%s-%s.json", reportTime.Format("20060102-150405"), report.RunID[:8])
	}
	reportPath := filepath.Join(reportDir, fileName)
	if abs, err := filepath.Abs(reportPath); err == nil {
		reportPath = abs
	}

	data, err := json.MarshalIndent(buildJSONReport(report), "", "  ")
	if err != nil {
		return reportPath, fmt.Errorf("marshal report json: %w", err)
	}
	if err := os.WriteFile(reportPath, data, 0o644); err != nil {
		return reportPath, fmt.Errorf("write report json: %w", err)
	}
	return reportPath, nil
}

func buildJSONReport(report Report) jsonReport {
	problems := make([]jsonProblem, 0, len(report.ProblemCounts))
	categories := make([]string, 0, len(report.ProblemCounts))
	for category := range report.ProblemCounts {
		categories = append(categories, category)
	}
	slices.Sort(categories)
	for _, category := range categories {
		problems = append(problems, jsonProblem{
			Category: category,
			Count:    report.ProblemCounts[category],
			Samples:  append([]string(nil), report.ProblemSample[category]...),
		})
	}

	var sources map[string]int
	if len(report.BySource) > 0 {
		sources = make(map[string]int, len(report.BySource))
		for src, n := range report.BySource {
			sources[string(src)] = n
		}
	}

	var disk *jsonDisk
	if report.DiskChecked {
		disk = &jsonDisk{
			Path:           report.Disk.Path,
			AvailableBytes: report.Disk.AvailableBytes,
			RequiredBytes:  report.Disk.RequiredBytes,
			Enough:         report.Disk.Enough,
		}
	}

	s := report.Summary
	return jsonReport{
		RunID:           report.RunID,
		Status:          report.Status,
		ExitCode:        report.ExitCode,
		Workdir:         report.Workdir,
		Source:          report.Source,
		Destination:     report.Destination,
		DryRun:          report.DryRun,
		StartedAtLocal:  report.StartedAtLocal.Format(time.RFC3339Nano),
		FinishedAtLocal: report.FinishedAtLocal.Format(time.RFC3339Nano),
		DurationMS:      report.TotalDuration.Milliseconds(),
		Disk:            disk,
		Files: jsonFiles{
			Found:           s.Found,
			Copied:          s.Copied,
			SkippedExisting: s.SkippedExisting,
			Unknown:         s.Unknown,
			Failed:          s.Failed,
			Unsupported:     s.Unsupported,
		},
		DateSources: sources,
		TimingsMS: jsonTimingsMS{
			Scan:    report.ScanDuration.Milliseconds(),
			Process: report.ProcessDuration.Milliseconds(),
			Total:   report.TotalDuration.Milliseconds(),
		},
		Problems: problems,
	}
}
