// Package shellprop provides the optional "date taken" property lookup used as
// the second stage of date resolution. The lookup is a capability: when the
// backing tool is missing the Unavailable provider is used instead and the
// stage simply fails.
package shellprop

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/barasher/go-exiftool"
	"github.com/sirupsen/logrus"

	"github.com/vchilikov/mediasort/internal/exifcmd"
)

var (
	ErrUnavailable = errors.New("date taken property is unavailable")
	ErrNoValue     = errors.New("no date taken property")
)

// Provider returns the raw, unparsed "date taken" value for a file.
type Provider interface {
	DateTaken(path string) (string, error)
}

// Unavailable is the provider for platforms without the capability.
type Unavailable struct{}

func (Unavailable) DateTaken(string) (string, error) {
	return "", ErrUnavailable
}

// dateTakenKeys are tried in order; the first non-empty value wins.
var dateTakenKeys = []string{"DateTimeOriginal", "CreateDate", "MediaCreateDate"}

type extractor interface {
	ExtractMetadata(files ...string) []exiftool.FileMetadata
	Close() error
}

var (
	resolveExiftool = exifcmd.Resolve
	startExiftool   = func(bin string) (extractor, error) {
		return exiftool.NewExiftool(exiftool.SetExiftoolBinaryPath(bin))
	}
)

// Exiftool reads the property through a long-lived exiftool process that is
// started on first use.
type Exiftool struct {
	bin string

	mu       sync.Mutex
	et       extractor
	startErr error
}

// Open returns the best provider for this machine. mode "off" disables the
// lookup; any other value enables it when exiftool can be resolved.
func Open(mode string, override string) Provider {
	if strings.EqualFold(strings.TrimSpace(mode), "off") {
		return Unavailable{}
	}
	bin, err := resolveExiftool(override)
	if err != nil {
		logrus.WithError(err).Debug("date taken lookup disabled")
		return Unavailable{}
	}
	return &Exiftool{bin: bin}
}

// Close stops the exiftool process if one was started. It is safe to call on
// any provider.
func Close(p Provider) error {
	e, ok := p.(*Exiftool)
	if !ok {
		return nil
	}
	return e.Close()
}

func (e *Exiftool) DateTaken(path string) (string, error) {
	et, err := e.ensure()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	for _, fm := range et.ExtractMetadata(safePath(path)) {
		if fm.Err != nil {
			return "", fmt.Errorf("read properties of %s: %w", path, fm.Err)
		}
		for _, key := range dateTakenKeys {
			value, err := fm.GetString(key)
			if err == nil && strings.TrimSpace(value) != "" {
				return value, nil
			}
		}
	}
	return "", ErrNoValue
}

func (e *Exiftool) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.et == nil {
		return nil
	}
	err := e.et.Close()
	e.et = nil
	return err
}

func (e *Exiftool) ensure() (extractor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.et != nil {
		return e.et, nil
	}
	// A failed start is not retried for every file.
	if e.startErr != nil {
		return nil, e.startErr
	}
	et, err := startExiftool(e.bin)
	if err != nil {
		e.startErr = fmt.Errorf("start exiftool: %w", err)
		return nil, e.startErr
	}
	e.et = et
	return et, nil
}

// safePath keeps a leading dash from being read as an exiftool option.
func safePath(path string) string {
	if strings.HasPrefix(path, "-") {
		return "." + string(filepath.Separator) + path
	}
	return path
}
