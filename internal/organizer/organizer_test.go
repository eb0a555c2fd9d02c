package organizer

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vchilikov/mediasort/internal/copier"
	"github.com/vchilikov/mediasort/internal/dates"
	"github.com/vchilikov/mediasort/internal/mediaext"
)

type fakeResolver struct {
	byName map[string]dates.Resolution
	calls  map[string]int
}

func (f *fakeResolver) Resolve(path string, _ mediaext.Kind) dates.Resolution {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[filepath.Base(path)]++
	return f.byName[filepath.Base(path)]
}

func known(year int, month time.Month, day int) dates.Resolution {
	return dates.Resolution{
		Date:   time.Date(year, month, day, 12, 0, 0, 0, time.Local),
		Source: dates.SourceModTime,
		Known:  true,
	}
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func writeMedia(t *testing.T, root string, rel string, data string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func assertBalanced(t *testing.T, s Summary) {
	t.Helper()
	if s.Found != s.Copied+s.SkippedExisting+s.Unknown+s.Failed {
		t.Fatalf("summary does not add up: %+v", s)
	}
}

func stubOrganizerDeps() func() {
	origCopy := copyIfAbsent
	origCheck := checkCopy
	origWalk := walkDir
	return func() {
		copyIfAbsent = origCopy
		checkCopy = origCheck
		walkDir = origWalk
	}
}

func TestRun_FilenameDateGoesToMonthFolder(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeMedia(t, src, "IMG_20220615_101500.jpg", "not really a jpeg")

	resolver := dates.NewResolver(dates.Options{Logger: quietLogger()})
	report, err := Run(Options{Destination: dst, Dates: resolver, Logger: quietLogger()}, src, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	assertExists(t, filepath.Join(dst, "2022", "06.June", "IMG_20220615_101500.jpg"))
	if report.Summary.Copied != 1 {
		t.Fatalf("Copied: want 1, got %d", report.Summary.Copied)
	}
	if report.BySource[dates.SourceFilename] != 1 {
		t.Fatalf("expected one filename-sourced date, got %v", report.BySource)
	}
	assertBalanced(t, report.Summary)
}

func TestRun_VideoUsesFilesystemDate(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeMedia(t, src, filepath.Join("trip", "clip.mp4"), "video")

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"clip.mp4": known(2021, time.March, 10),
	}}
	report, err := Run(Options{Destination: dst, Dates: resolver}, src, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	assertExists(t, filepath.Join(dst, "2021", "03.March", "clip.mp4"))
	if report.Summary.Found != 1 || report.Summary.Copied != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
}

func TestRun_UnknownDateGoesToUnknownFolder(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeMedia(t, src, "mystery.png", "png")

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"mystery.png": {Source: dates.SourceNone},
	}}
	report, err := Run(Options{Destination: dst, Dates: resolver}, src, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	assertExists(t, filepath.Join(dst, "Unknown", "mystery.png"))
	if report.Summary.Unknown != 1 {
		t.Fatalf("Unknown: want 1, got %d", report.Summary.Unknown)
	}
	if report.Summary.Copied != 0 {
		t.Fatalf("Copied: want 0, got %d", report.Summary.Copied)
	}
	if got := report.ProblemCounts[ProblemUnknown]; got != 1 {
		t.Fatalf("unknown problems: want 1, got %d", got)
	}
	assertBalanced(t, report.Summary)
}

func TestRun_SecondRunCopiesNothing(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeMedia(t, src, "a.jpg", "a")
	writeMedia(t, src, filepath.Join("sub", "b.mov"), "b")

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"a.jpg": known(2019, time.July, 4),
		"b.mov": known(2020, time.January, 1),
	}}

	first, err := Run(Options{Destination: dst, Dates: resolver}, src, nil)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Summary.Copied != 2 {
		t.Fatalf("first run Copied: want 2, got %d", first.Summary.Copied)
	}

	second, err := Run(Options{Destination: dst, Dates: resolver}, src, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Summary.Copied != 0 || second.Summary.SkippedExisting != 2 {
		t.Fatalf("second run summary: %+v", second.Summary)
	}
	assertBalanced(t, second.Summary)
}

func TestRun_NeverOverwritesExistingFile(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeMedia(t, src, "a.jpg", "new")
	existing := writeMedia(t, dst, filepath.Join("2019", "07.July", "a.jpg"), "old")

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"a.jpg": known(2019, time.July, 4),
	}}
	report, err := Run(Options{Destination: dst, Dates: resolver}, src, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Summary.SkippedExisting != 1 {
		t.Fatalf("SkippedExisting: want 1, got %d", report.Summary.SkippedExisting)
	}
	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("read existing: %v", err)
	}
	if string(data) != "old" {
		t.Fatalf("existing file overwritten: %q", data)
	}
}

func TestRun_CopyErrorDoesNotStopRun(t *testing.T) {
	restore := stubOrganizerDeps()
	defer restore()

	src := t.TempDir()
	dst := t.TempDir()
	writeMedia(t, src, "a.jpg", "a")
	writeMedia(t, src, "b.jpg", "b")
	writeMedia(t, src, "c.jpg", "c")

	copyIfAbsent = func(path string, dir string) (copier.Outcome, string, error) {
		if filepath.Base(path) == "b.jpg" {
			return 0, "", errors.New("disk on fire")
		}
		return copier.CopyIfAbsent(path, dir)
	}

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"a.jpg": known(2018, time.May, 1),
		"b.jpg": known(2018, time.May, 2),
		"c.jpg": known(2018, time.May, 3),
	}}
	report, err := Run(Options{Destination: dst, Dates: resolver}, src, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if report.Summary.Found != 3 || report.Summary.Copied != 2 || report.Summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	if got := report.ProblemCounts[ProblemCopy]; got != 1 {
		t.Fatalf("copy errors: want 1, got %d", got)
	}
	assertExists(t, filepath.Join(dst, "2018", "05.May", "c.jpg"))
	assertBalanced(t, report.Summary)
}

func TestRun_UnsupportedFilesAreNotFound(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeMedia(t, src, "notes.txt", "text")
	writeMedia(t, src, "a.JPG", "a")
	writeMedia(t, src, "jpg", "no extension")

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"a.JPG": known(2017, time.December, 24),
	}}
	report, err := Run(Options{Destination: dst, Dates: resolver}, src, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Summary.Found != 1 {
		t.Fatalf("Found: want 1, got %d", report.Summary.Found)
	}
	if report.Summary.Unsupported != 2 {
		t.Fatalf("Unsupported: want 2, got %d", report.Summary.Unsupported)
	}
	if resolver.calls["notes.txt"] != 0 {
		t.Fatalf("unsupported files must not be resolved")
	}
	assertExists(t, filepath.Join(dst, "2017", "12.December", "a.JPG"))
}

func TestRun_InPlaceSkipsOutputFolders(t *testing.T) {
	root := t.TempDir()
	writeMedia(t, root, filepath.Join("2020", "01.January", "old.jpg"), "old")
	writeMedia(t, root, filepath.Join(".mediasort", "reports", "x.json"), "{}")
	writeMedia(t, root, filepath.Join("Holidays", "new.jpg"), "new")

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"new.jpg": known(2023, time.August, 15),
	}}
	report, err := Run(Options{Dates: resolver}, root, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Summary.Found != 1 {
		t.Fatalf("Found: want 1, got %d (%v)", report.Summary.Found, resolver.calls)
	}
	assertExists(t, filepath.Join(root, "2023", "08.August", "new.jpg"))
	assertExists(t, filepath.Join(root, "Holidays", "new.jpg"))
	if got := report.ProblemCounts[ProblemSkipped]; got != 2 {
		t.Fatalf("skipped output folders: want 2, got %d (%v)", got, report.ProblemSamples[ProblemSkipped])
	}
}

func TestRun_InPlaceWalksUserYearAndUnknownFolders(t *testing.T) {
	root := t.TempDir()
	writeMedia(t, root, filepath.Join("2019", "DSC0001.jpg"), "loose")
	writeMedia(t, root, filepath.Join("2019", "Wedding", "DSC0002.jpg"), "album")
	writeMedia(t, root, filepath.Join("Unknown", "mine.jpg"), "mine")

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"DSC0001.jpg": known(2019, time.May, 4),
		"DSC0002.jpg": known(2019, time.June, 8),
		"mine.jpg":    {Source: dates.SourceNone},
	}}
	report, err := Run(Options{Dates: resolver}, root, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Summary.Found != 3 {
		t.Fatalf("Found: want 3, got %d (%v)", report.Summary.Found, resolver.calls)
	}
	assertExists(t, filepath.Join(root, "2019", "05.May", "DSC0001.jpg"))
	assertExists(t, filepath.Join(root, "2019", "06.June", "DSC0002.jpg"))
	if report.Summary.Copied != 2 || report.Summary.Unknown != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	assertBalanced(t, report.Summary)

	// The month folders written above are output now; the loose files are
	// found again and already present.
	resolver.calls = nil
	second, err := Run(Options{Dates: resolver}, root, nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Summary.Found != 3 || second.Summary.SkippedExisting != 2 {
		t.Fatalf("second run summary: %+v", second.Summary)
	}
	if resolver.calls["DSC0001.jpg"] != 1 {
		t.Fatalf("copies inside month folders must not be walked: %v", resolver.calls)
	}
}

func TestRun_DirectoryInTheWayIsAConflict(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeMedia(t, src, "a.jpg", "a")
	if err := os.MkdirAll(filepath.Join(dst, "2019", "07.July", "a.jpg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"a.jpg": known(2019, time.July, 4),
	}}
	report, err := Run(Options{Destination: dst, Dates: resolver}, src, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Summary.Failed != 1 {
		t.Fatalf("Failed: want 1, got %d", report.Summary.Failed)
	}
	if got := report.ProblemCounts[ProblemConflict]; got != 1 {
		t.Fatalf("destination conflicts: want 1, got %d", got)
	}
	if got := report.ProblemCounts[ProblemCopy]; got != 0 {
		t.Fatalf("copy errors: want 0, got %d", got)
	}
}

func TestOrganize_ProcessesOnlyScannedFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeMedia(t, src, "a.jpg", "a")

	scan, err := Scan(src, dst)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	writeMedia(t, src, "late.jpg", "late")

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"a.jpg":    known(2016, time.April, 1),
		"late.jpg": known(2016, time.April, 2),
	}}
	report := Organize(Options{Dates: resolver}, scan, nil)
	if report.Summary.Found != 1 || report.Summary.Copied != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
	if report.Destination != dst {
		t.Fatalf("destination: want %q, got %q", dst, report.Destination)
	}
	if resolver.calls["late.jpg"] != 0 {
		t.Fatalf("files created after the scan must not be processed")
	}
}

func TestRun_DestinationInsideSourceIsSkipped(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(src, "sorted")
	writeMedia(t, src, "a.jpg", "a")
	writeMedia(t, dst, filepath.Join("2001", "01.January", "z.jpg"), "z")

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"a.jpg": known(2001, time.January, 1),
	}}
	report, err := Run(Options{Destination: dst, Dates: resolver}, src, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Summary.Found != 1 {
		t.Fatalf("Found: want 1, got %d", report.Summary.Found)
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	writeMedia(t, src, "a.jpg", "a")

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"a.jpg": known(2015, time.June, 1),
	}}
	report, err := Run(Options{Destination: dst, Dates: resolver, DryRun: true}, src, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !report.DryRun || report.Summary.Copied != 1 {
		t.Fatalf("unexpected dry-run report: %+v", report)
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run must not create the destination")
	}
}

func TestRun_InvalidRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	if _, err := Run(Options{}, missing, nil); !errors.Is(err, ErrInvalidRoot) {
		t.Fatalf("expected ErrInvalidRoot for missing folder, got %v", err)
	}

	file := writeMedia(t, t.TempDir(), "a.jpg", "a")
	if _, err := Run(Options{}, file, nil); !errors.Is(err, ErrInvalidRoot) {
		t.Fatalf("expected ErrInvalidRoot for file, got %v", err)
	}
}

func TestRun_WalkErrorsAreRecorded(t *testing.T) {
	restore := stubOrganizerDeps()
	defer restore()

	src := t.TempDir()
	good := writeMedia(t, src, "a.jpg", "a")

	walkDir = func(root string, fn fs.WalkDirFunc) error {
		info, err := os.Stat(root)
		if err != nil {
			return err
		}
		if err := fn(root, fs.FileInfoToDirEntry(info), nil); err != nil {
			return err
		}
		if err := fn(filepath.Join(root, "locked"), nil, fs.ErrPermission); err != nil && err != filepath.SkipDir {
			return err
		}
		goodInfo, err := os.Stat(good)
		if err != nil {
			return err
		}
		return fn(good, fs.FileInfoToDirEntry(goodInfo), nil)
	}

	resolver := &fakeResolver{byName: map[string]dates.Resolution{
		"a.jpg": known(2010, time.October, 10),
	}}
	report, err := Run(Options{Destination: t.TempDir(), Dates: resolver}, src, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := report.ProblemCounts[ProblemWalk]; got != 1 {
		t.Fatalf("walk errors: want 1, got %d", got)
	}
	if report.Summary.Copied != 1 {
		t.Fatalf("Copied: want 1, got %d", report.Summary.Copied)
	}
}

func TestRun_ReportsProgressAndSamples(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	byName := make(map[string]dates.Resolution)
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg", "f.jpg", "g.jpg"} {
		writeMedia(t, src, name, name)
		byName[name] = dates.Resolution{
			Date:     time.Date(2012, time.February, 2, 0, 0, 0, 0, time.Local),
			Source:   dates.SourceModTime,
			Known:    true,
			Warnings: []error{dates.ErrUnparseable},
		}
	}

	var events []ProgressEvent
	report, err := Run(Options{Destination: dst, Dates: &fakeResolver{byName: byName}}, src, func(e ProgressEvent) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(events) != 7 {
		t.Fatalf("expected 7 progress events, got %d", len(events))
	}
	for i, e := range events {
		if e.Processed != i+1 || e.Total != 7 {
			t.Fatalf("unexpected progress event %d: %+v", i, e)
		}
	}
	if got := report.ProblemCounts[ProblemMetadata]; got != 7 {
		t.Fatalf("metadata warnings: want 7, got %d", got)
	}
	if got := len(report.ProblemSamples[ProblemMetadata]); got != maxProblemSamples {
		t.Fatalf("samples: want %d, got %d", maxProblemSamples, got)
	}
}

func TestScan_TotalBytes(t *testing.T) {
	src := t.TempDir()
	writeMedia(t, src, "a.jpg", "12345")
	writeMedia(t, src, filepath.Join("x", "b.mkv"), "123")
	writeMedia(t, src, "c.doc", "123456789")

	scan, err := Scan(src, "")
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if got := scan.TotalBytes(); got != 8 {
		t.Fatalf("TotalBytes: want 8, got %d", got)
	}
	if len(scan.Unsupported) != 1 {
		t.Fatalf("Unsupported: want 1, got %d", len(scan.Unsupported))
	}
}
