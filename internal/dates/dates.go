// Package dates resolves a best-effort capture date for a media file.
//
// Images go through an ordered fallback chain: embedded EXIF tags, the
// optional shell "date taken" property, a date pattern in the file name and
// finally the filesystem time. Videos only use the filesystem time. The first
// stage that yields a valid date wins; later stages are not consulted.
package dates

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vchilikov/mediasort/internal/mediaext"
	"github.com/vchilikov/mediasort/internal/shellprop"
)

var (
	ErrUnparseable       = errors.New("unparseable date")
	ErrUnsupportedFormat = errors.New("format has no metadata support")
	ErrNoMetadata        = errors.New("no embedded metadata")
	ErrNoDateTag         = errors.New("no usable date tag")
	ErrNoFilenameDate    = errors.New("no date in file name")
)

// Source names the stage a date came from.
type Source string

const (
	SourceNone      Source = "none"
	SourceExif      Source = "exif"
	SourceShell     Source = "shell"
	SourceFilename  Source = "filename"
	SourceBirthTime Source = "birth-time"
	SourceModTime   Source = "mod-time"
)

// Resolution is the single date attached to a file for one run.
type Resolution struct {
	Date   time.Time
	Source Source
	Known  bool
	// Warnings holds date-like values that were found but could not be parsed.
	Warnings []error
}

type Options struct {
	Tags    TagReader
	Shell   shellprop.Provider
	Pattern PatternMode
	Logger  logrus.FieldLogger
}

type Resolver struct {
	tags     TagReader
	shell    shellprop.Provider
	pattern  PatternMode
	fileTime func(path string) (time.Time, Source, error)
	log      logrus.FieldLogger
}

func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		tags:     opts.Tags,
		shell:    opts.Shell,
		pattern:  opts.Pattern,
		fileTime: FileTime,
		log:      opts.Logger,
	}
	if r.tags == nil {
		r.tags = ExifReader{}
	}
	if r.shell == nil {
		r.shell = shellprop.Unavailable{}
	}
	if r.pattern == "" {
		r.pattern = PatternLoose
	}
	if r.log == nil {
		r.log = logrus.StandardLogger()
	}
	return r
}

// Resolve runs the fallback chain for path. Unsupported kinds are treated like
// videos.
func (r *Resolver) Resolve(path string, kind mediaext.Kind) Resolution {
	log := r.log.WithField("path", path)
	var warnings []error

	if kind == mediaext.Image {
		t, warn, err := r.fromExif(path)
		for _, w := range warn {
			log.WithField("stage", SourceExif).WithError(w).Warn("ignoring malformed date value")
		}
		warnings = append(warnings, warn...)
		if err == nil {
			return Resolution{Date: t, Source: SourceExif, Known: true, Warnings: warnings}
		}
		log.WithField("stage", SourceExif).WithError(err).Debug("stage failed")

		t, err = r.fromShell(path)
		if err == nil {
			return Resolution{Date: t, Source: SourceShell, Known: true, Warnings: warnings}
		}
		if errors.Is(err, ErrUnparseable) {
			warnings = append(warnings, err)
			log.WithField("stage", SourceShell).WithError(err).Warn("ignoring malformed date value")
		} else {
			log.WithField("stage", SourceShell).WithError(err).Debug("stage failed")
		}

		t, err = FromFilename(path, r.pattern)
		if err == nil {
			return Resolution{Date: t, Source: SourceFilename, Known: true, Warnings: warnings}
		}
		log.WithField("stage", SourceFilename).WithError(err).Debug("stage failed")
	}

	t, src, err := r.fileTime(path)
	if err != nil {
		log.WithError(err).Warn("no usable date")
		return Resolution{Source: SourceNone, Warnings: warnings}
	}
	return Resolution{Date: t, Source: src, Known: true, Warnings: warnings}
}

func (r *Resolver) fromExif(path string) (time.Time, []error, error) {
	tags, err := r.tags.ReadTags(path)
	if err != nil {
		return time.Time{}, nil, err
	}

	var warnings []error
	for _, id := range DateTags {
		raw, ok := tags[id]
		if !ok || cleanTagValue(raw) == "" {
			continue
		}
		t, err := ParseExifTimestamp(raw)
		if err == nil {
			return t, warnings, nil
		}
		warnings = append(warnings, err)
	}
	return time.Time{}, warnings, ErrNoDateTag
}

func (r *Resolver) fromShell(path string) (time.Time, error) {
	raw, err := r.shell.DateTaken(path)
	if err != nil {
		return time.Time{}, err
	}
	return ParseLenient(raw)
}
