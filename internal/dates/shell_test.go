package dates

import (
	"errors"
	"testing"
	"time"
)

func TestSanitize(t *testing.T) {
	raw := "\u200e6/\u200e15/\u200e2022 \u200f\u200e10:15 AM\x00"
	if got := Sanitize(raw); got != "6/15/2022 10:15 AM" {
		t.Fatalf("unexpected sanitized value: %q", got)
	}
	if got := Sanitize("  \t  "); got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
}

func TestParseLenient(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2019:07:04 10:11:12", time.Date(2019, 7, 4, 10, 11, 12, 0, time.Local)},
		{"\u200e6/\u200e15/\u200e2022 \u200f\u200e10:15 AM", time.Date(2022, 6, 15, 10, 15, 0, 0, time.Local)},
		{"2022-06-15 10:15:00", time.Date(2022, 6, 15, 10, 15, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		got, err := ParseLenient(tt.raw)
		if err != nil {
			t.Fatalf("ParseLenient(%q) error: %v", tt.raw, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("ParseLenient(%q): want %v, got %v", tt.raw, tt.want, got)
		}
	}

	for _, bad := range []string{"", "\u200e\u200f", "not a date at all"} {
		if _, err := ParseLenient(bad); !errors.Is(err, ErrUnparseable) {
			t.Fatalf("ParseLenient(%q): expected ErrUnparseable, got %v", bad, err)
		}
	}
}
