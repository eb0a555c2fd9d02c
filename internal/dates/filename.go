package dates

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PatternMode controls how eagerly digit runs in a file name are read as dates.
type PatternMode string

const (
	// PatternLoose accepts the leftmost 6-digit run as YYYYMM. Runs that are
	// not dates (resolutions, counters) are accepted whenever the month fits.
	PatternLoose PatternMode = "loose"
	// PatternStrict requires an 8-digit YYYYMMDD run that is a real calendar
	// date between 1900 and 2100.
	PatternStrict PatternMode = "strict"
	PatternOff    PatternMode = "off"
)

const (
	strictYearFirst = 1900
	strictYearLast  = 2100
)

var (
	yearMonthRe    = regexp.MustCompile(`(\d{4})(\d{2})`)
	yearMonthDayRe = regexp.MustCompile(`\d{8}`)
)

func ParsePatternMode(s string) (PatternMode, error) {
	switch mode := PatternMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case PatternLoose, PatternStrict, PatternOff:
		return mode, nil
	case "":
		return PatternLoose, nil
	default:
		return "", fmt.Errorf("unknown filename pattern mode %q (want loose, strict or off)", s)
	}
}

// FromFilename extracts a date from the base name of path.
func FromFilename(path string, mode PatternMode) (time.Time, error) {
	name := filepath.Base(path)

	switch mode {
	case PatternOff:
		return time.Time{}, fmt.Errorf("%w: pattern matching disabled", ErrNoFilenameDate)
	case PatternStrict:
		for _, run := range yearMonthDayRe.FindAllString(name, -1) {
			t, err := time.ParseInLocation("20060102", run, time.Local)
			if err != nil || t.Year() < strictYearFirst || t.Year() > strictYearLast {
				continue
			}
			return t, nil
		}
		return time.Time{}, ErrNoFilenameDate
	default:
		match := yearMonthRe.FindStringSubmatch(name)
		if match == nil {
			return time.Time{}, ErrNoFilenameDate
		}
		year, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		if month < 1 || month > 12 {
			return time.Time{}, fmt.Errorf("%w: month %02d out of range in %q", ErrNoFilenameDate, month, name)
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local), nil
	}
}
