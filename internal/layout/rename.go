package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// RenameReport lists what NormalizeMonthFolders changed, as paths relative to
// the root.
type RenameReport struct {
	Renamed   []string
	Merged    []string
	Conflicts []string
}

var renameFn = os.Rename

// NormalizeMonthFolders renames plain month-name folders ("March") found in
// the year folders under root to the canonical "03.March" form. When both
// exist the legacy folder's entries are moved across without replacing
// anything; entries whose name is taken stay behind and are reported as
// conflicts.
func NormalizeMonthFolders(root string) (RenameReport, error) {
	var report RenameReport

	years, err := os.ReadDir(root)
	if err != nil {
		return report, fmt.Errorf("read %s: %w", root, err)
	}

	for _, year := range years {
		if !year.IsDir() || !yearFolderRe.MatchString(year.Name()) {
			continue
		}
		yearDir := filepath.Join(root, year.Name())
		months, err := os.ReadDir(yearDir)
		if err != nil {
			return report, fmt.Errorf("read %s: %w", yearDir, err)
		}

		for _, month := range months {
			if !month.IsDir() {
				continue
			}
			m, ok := legacyMonth(month.Name())
			if !ok {
				continue
			}
			legacy := filepath.Join(yearDir, month.Name())
			canonical := filepath.Join(yearDir, MonthFolder(m))
			rel := filepath.Join(year.Name(), month.Name())

			if _, err := os.Lstat(canonical); errors.Is(err, os.ErrNotExist) {
				if err := renameFn(legacy, canonical); err != nil {
					return report, fmt.Errorf("rename %s: %w", legacy, err)
				}
				report.Renamed = append(report.Renamed, rel)
				continue
			} else if err != nil {
				return report, fmt.Errorf("stat %s: %w", canonical, err)
			}

			conflicts, err := mergeInto(legacy, canonical)
			if err != nil {
				return report, err
			}
			for _, name := range conflicts {
				report.Conflicts = append(report.Conflicts, filepath.Join(rel, name))
			}
			if len(conflicts) == 0 {
				if err := os.Remove(legacy); err != nil {
					return report, fmt.Errorf("remove %s: %w", legacy, err)
				}
			}
			report.Merged = append(report.Merged, rel)
		}
	}

	return report, nil
}

func mergeInto(src string, dst string) ([]string, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}

	var conflicts []string
	for _, entry := range entries {
		target := filepath.Join(dst, entry.Name())
		if _, err := os.Lstat(target); err == nil {
			conflicts = append(conflicts, entry.Name())
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return conflicts, fmt.Errorf("stat %s: %w", target, err)
		}
		if err := renameFn(filepath.Join(src, entry.Name()), target); err != nil {
			return conflicts, fmt.Errorf("move %s: %w", entry.Name(), err)
		}
	}
	return conflicts, nil
}
