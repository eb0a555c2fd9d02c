// Package wizard runs the interactive photo organizer menu.
package wizard

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vchilikov/mediasort/internal/cleanup"
	"github.com/vchilikov/mediasort/internal/config"
	"github.com/vchilikov/mediasort/internal/console"
	"github.com/vchilikov/mediasort/internal/dates"
	"github.com/vchilikov/mediasort/internal/layout"
	"github.com/vchilikov/mediasort/internal/organizer"
	"github.com/vchilikov/mediasort/internal/preflight"
	"github.com/vchilikov/mediasort/internal/shellprop"
)

const (
	ExitSuccess       = 0
	ExitPreflightFail = 2
	ExitRuntimeFail   = 3
)

var (
	checkDependencies = preflight.CheckDependencies
	checkDiskSpace    = preflight.CheckDiskSpace
	scanMedia         = organizer.Scan
	organizeMedia     = organizer.Organize
	deleteJSON        = cleanup.DeleteJSON
	renameMonths      = layout.NormalizeMonthFolders
	openShell         = shellprop.Open
	writeReportJSON   = writeReportJSONImpl
	newRunID          = uuid.NewString
	listDir           = os.ReadDir
)

type session struct {
	cwd    string
	cfg    config.Config
	out    io.Writer
	prompt *console.Prompter
	log    logrus.FieldLogger
	dates  organizer.DateResolver
}

// Run shows the menu until the user quits or input ends. The result is the
// worst exit code of any command run in the session.
func Run(cwd string, in io.Reader, out io.Writer, cfg config.Config) int {
	log := logrus.WithField("workdir", cwd)
	if cfg.Organizer.Destination == "" {
		cfg.Organizer.Destination = cwd
	}

	console.WriteLine(out, "mediasort interactive mode")
	console.Writef(out, "Working directory: %s\n", cwd)
	if cfg.Organizer.Destination != cwd {
		console.Writef(out, "Destination: %s\n", cfg.Organizer.Destination)
	}

	if cfg.Organizer.ShellProperty != "off" {
		required := false
		for _, dep := range checkDependencies(cfg.Organizer.ExiftoolPath) {
			if dep.Optional {
				console.Warn(out, "%s not found: %s is disabled.", dep.Name, dep.Purpose)
			} else {
				required = true
				console.Fail(out, "%s not found: it %s and is required.", dep.Name, dep.Purpose)
			}
			if hint := preflight.InstallHint(dep); hint != "" {
				console.Writef(out, "Install it with: %s\n", hint)
			}
		}
		if required {
			return ExitPreflightFail
		}
	}

	shell := openShell(cfg.Organizer.ShellProperty, cfg.Organizer.ExiftoolPath)
	defer func() {
		if err := shellprop.Close(shell); err != nil {
			log.WithError(err).Warn("closing exiftool")
		}
	}()

	s := &session{
		cwd:    cwd,
		cfg:    cfg,
		out:    out,
		prompt: console.NewPrompter(in, out),
		log:    log,
		dates: dates.NewResolver(dates.Options{
			Shell:   shell,
			Pattern: cfg.Pattern(),
			Logger:  log,
		}),
	}

	worst := ExitSuccess
	for {
		printMenu(out)
		choice, err := s.prompt.Ask("Enter your choice: ")
		if err != nil {
			if !errors.Is(err, io.EOF) {
				console.Fail(out, "%v", err)
				worst = max(worst, ExitRuntimeFail)
			}
			return worst
		}

		var code int
		switch choice {
		case "0":
			console.WriteLine(out, "Bye.")
			return worst
		case "1":
			code = s.organize(cwd)
		case "2":
			code = s.organizeFolder()
		case "3":
			code = s.deleteJSON()
		case "4":
			code = s.renameMonths()
		default:
			console.Fail(out, "Invalid choice %q, enter a number from 0 to 4.", choice)
			continue
		}
		worst = max(worst, code)
	}
}

func printMenu(out io.Writer) {
	console.WriteLine(out, "")
	console.WriteLine(out, "Options:")
	console.WriteLine(out, "0 - Quit")
	console.WriteLine(out, "1 - Process all media files in all folders")
	console.WriteLine(out, "2 - Select a specific folder to process")
	console.WriteLine(out, "3 - Delete all JSON files")
	console.WriteLine(out, "4 - Rename folders by month order")
}

func (s *session) organize(source string) int {
	startedAt := time.Now()
	report := Report{
		RunID:          newRunID(),
		Status:         statusFailed,
		Workdir:        s.cwd,
		Source:         source,
		Destination:    s.cfg.Organizer.Destination,
		DryRun:         s.cfg.Organizer.DryRun,
		StartedAtLocal: startedAt,
	}
	finish := func(code int) int {
		report.ExitCode = code
		report.FinishedAtLocal = time.Now()
		report.TotalDuration = report.FinishedAtLocal.Sub(startedAt)
		path, err := writeReportJSON(report)
		if err != nil {
			report.DetailedReportWriteError = err.Error()
		} else {
			report.DetailedReportPath = path
		}
		printReport(s.out, report)
		s.log.WithFields(logrus.Fields{
			"run_id": report.RunID,
			"status": report.Status,
			"report": report.DetailedReportPath,
		}).Info("run finished")
		return code
	}

	console.Writef(s.out, "Scanning %s...\n", source)
	scanStartedAt := time.Now()
	scan, err := scanMedia(source, report.Destination)
	report.ScanDuration = time.Since(scanStartedAt)
	if err != nil {
		report.addProblem("scan errors", 1, err.Error())
		console.Fail(s.out, "Cannot scan %s: %v", source, err)
		return finish(ExitRuntimeFail)
	}
	console.Writef(s.out, "Media files found: %d (%s)\n", len(scan.Files), preflight.FormatBytes(scan.TotalBytes()))

	if !report.DryRun && len(scan.Files) > 0 {
		space, err := checkDiskSpace(report.Destination, scan.TotalBytes())
		if err != nil {
			// Platforms without a free-space query still get to run.
			report.addProblem("disk check errors", 1, err.Error())
			console.Warn(s.out, "Could not check free space: %v", err)
		} else {
			report.Disk = space
			report.DiskChecked = true
			console.Writef(s.out, "Disk: available=%s, required=%s\n",
				preflight.FormatBytes(space.AvailableBytes),
				preflight.FormatBytes(space.RequiredBytes))
			if !space.Enough {
				console.Fail(s.out, "Not enough disk space at %s.", space.Path)
				return finish(ExitPreflightFail)
			}
		}
	}

	onProgress, done := newProgress(s.out, len(scan.Files))
	processStartedAt := time.Now()
	result := organizeMedia(organizer.Options{
		Dates:  s.dates,
		DryRun: report.DryRun,
		Logger: s.log.WithField("run_id", report.RunID),
	}, scan, onProgress)
	done()
	report.ProcessDuration = time.Since(processStartedAt)

	report.Summary = result.Summary
	report.BySource = result.BySource
	for category, count := range result.ProblemCounts {
		report.addProblem(category, count, result.ProblemSamples[category]...)
	}

	if result.Summary.Failed > 0 || result.ProblemCounts[organizer.ProblemWalk] > 0 {
		report.Status = statusPartialSuccess
		return finish(ExitRuntimeFail)
	}
	report.Status = statusSuccess
	return finish(ExitSuccess)
}

func (s *session) organizeFolder() int {
	folders, err := s.subfolders()
	if err != nil {
		console.Fail(s.out, "Cannot list folders: %v", err)
		return ExitRuntimeFail
	}
	if len(folders) == 0 {
		console.WriteLine(s.out, "No folders to process.")
		return ExitSuccess
	}
	for i, name := range folders {
		console.Writef(s.out, "%d - %s\n", i+1, name)
	}

	answer, err := s.prompt.Ask("Select a folder by number: ")
	if err != nil {
		return ExitSuccess
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(folders) {
		console.Fail(s.out, "Invalid folder number %q.", answer)
		return ExitSuccess
	}
	return s.organize(filepath.Join(s.cwd, folders[n-1]))
}

// subfolders lists the working directory's folders, leaving out the state
// folder and year folders that hold only organized months.
func (s *session) subfolders() ([]string, error) {
	entries, err := listDir(s.cwd)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == layout.StateDir || layout.IsOutputYear(filepath.Join(s.cwd, e.Name())) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

func (s *session) deleteJSON() int {
	deleted, err := deleteJSON(s.cwd)
	s.log.WithField("deleted", deleted).Info("json cleanup")
	console.Success(s.out, "Deleted JSON files: %d", deleted)
	if err != nil {
		s.log.WithError(err).Error("json cleanup")
		console.Fail(s.out, "Some JSON files could not be deleted: %v", err)
		return ExitRuntimeFail
	}
	return ExitSuccess
}

func (s *session) renameMonths() int {
	res, err := renameMonths(s.cfg.Organizer.Destination)
	for _, name := range res.Renamed {
		console.Success(s.out, "Renamed: %s", name)
	}
	for _, name := range res.Merged {
		console.Success(s.out, "Merged: %s", name)
	}
	for _, name := range res.Conflicts {
		console.Warn(s.out, "Left in place, name already taken: %s", name)
	}
	if err != nil {
		console.Fail(s.out, "Renaming month folders failed: %v", err)
		return ExitRuntimeFail
	}
	if len(res.Renamed)+len(res.Merged)+len(res.Conflicts) == 0 {
		console.WriteLine(s.out, "Month folders already use the numbered names.")
	}
	return ExitSuccess
}
