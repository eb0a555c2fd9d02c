package dates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

const (
	TagDateTimeOriginal  uint16 = 0x9003 // 36867
	TagDateTimeDigitized uint16 = 0x9004 // 36868
	TagDateTime          uint16 = 0x0132 // 306
)

// DateTags lists the capture-time tags in order of preference.
var DateTags = []uint16{TagDateTimeOriginal, TagDateTimeDigitized, TagDateTime}

const exifLayout = "2006:01:02 15:04:05"

// TagReader returns the string-valued metadata tags of a file keyed by tag id.
type TagReader interface {
	ReadTags(path string) (map[uint16]string, error)
}

// ExifReader reads EXIF from JPEG and TIFF containers.
type ExifReader struct{}

// Simple raster formats that never carry EXIF for this reader.
var noExifContainers = map[string]struct{}{
	".bmp": {}, ".gif": {}, ".png": {},
}

func (ExifReader) ReadTags(path string) (map[uint16]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := noExifContainers[ext]; ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Decode returns a usable value alongside non-critical errors (for
	// example a missing GPS directory).
	x, err := exif.Decode(f)
	if x == nil {
		return nil, fmt.Errorf("%w: %v", ErrNoMetadata, err)
	}

	tags := make(map[uint16]string)
	if err := x.Walk(tagCollector(tags)); err != nil {
		return nil, fmt.Errorf("walk exif: %w", err)
	}
	if len(tags) == 0 {
		return nil, ErrNoMetadata
	}
	return tags, nil
}

type tagCollector map[uint16]string

func (c tagCollector) Walk(_ exif.FieldName, tag *tiff.Tag) error {
	if tag == nil || tag.Format() != tiff.StringVal {
		return nil
	}
	value, err := tag.StringVal()
	if err != nil {
		return nil
	}
	c[tag.Id] = value
	return nil
}

// ParseExifTimestamp parses the fixed-width "YYYY:MM:DD HH:MM:SS" form in
// local time.
func ParseExifTimestamp(raw string) (time.Time, error) {
	value := cleanTagValue(raw)
	t, err := time.ParseInLocation(exifLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, value)
	}
	return t, nil
}

func cleanTagValue(raw string) string {
	return strings.TrimSpace(strings.TrimRight(raw, "\x00"))
}
