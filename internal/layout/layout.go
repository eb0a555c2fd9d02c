// Package layout maps resolved dates to destination folders.
//
// Known dates go to "{year}/{MM.MonthName}", for example "2022/06.June".
// Files without a date share a single flat "Unknown" folder.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/vchilikov/mediasort/internal/dates"
	"github.com/vchilikov/mediasort/internal/mediaext"
)

const UnknownBucket = "Unknown"

// StateDir holds mediasort's own logs and reports inside a working folder.
const StateDir = ".mediasort"

var yearFolderRe = regexp.MustCompile(`^\d{4}$`)

// MonthFolder returns the canonical month folder name, e.g. "01.January".
func MonthFolder(m time.Month) string {
	return fmt.Sprintf("%02d.%s", int(m), m.String())
}

// Bucket returns the destination folder for r relative to the output root.
func Bucket(r dates.Resolution) string {
	if !r.Known {
		return UnknownBucket
	}
	return filepath.Join(fmt.Sprintf("%04d", r.Date.Year()), MonthFolder(r.Date.Month()))
}

// IsOutputPath reports whether dir is a folder the organizer writes under
// root: the state folder or a month folder inside a year folder. Year folders
// themselves are not output paths, since users keep their own files in them.
func IsOutputPath(root string, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	switch len(parts) {
	case 1:
		return parts[0] == StateDir
	case 2:
		return yearFolderRe.MatchString(parts[0]) && isMonthFolder(parts[1])
	}
	return false
}

// IsOutputYear reports whether dir is a year folder holding nothing but month
// folders, with no media of its own. Unreadable folders are not output.
func IsOutputYear(dir string) bool {
	if !yearFolderRe.MatchString(filepath.Base(dir)) {
		return false
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.IsDir() {
			if !isMonthFolder(e.Name()) {
				return false
			}
			continue
		}
		if mediaext.Classify(strings.ToLower(filepath.Ext(e.Name()))) != mediaext.Unsupported {
			return false
		}
	}
	return true
}

// isMonthFolder accepts both "06.June" and the plain "June" of older runs.
func isMonthFolder(name string) bool {
	for m := time.January; m <= time.December; m++ {
		if name == MonthFolder(m) {
			return true
		}
	}
	_, ok := legacyMonth(name)
	return ok
}

// legacyMonth recognises plain month-name folders such as "March".
func legacyMonth(name string) (time.Month, bool) {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(name, m.String()) {
			return m, true
		}
	}
	return 0, false
}
