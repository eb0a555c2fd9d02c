package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Sanitize drops every rune that is not printable ASCII and collapses the
// remaining whitespace. Shell property values often carry invisible
// direction marks around each date component.
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= 0x20 && r <= 0x7e {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ParseLenient sanitizes raw and parses it, trying the EXIF layout before a
// format-flexible parser.
func ParseLenient(raw string) (time.Time, error) {
	value := Sanitize(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseable)
	}
	if t, err := time.ParseInLocation(exifLayout, value, time.Local); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseIn(value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrUnparseable, value, err)
	}
	return t, nil
}
