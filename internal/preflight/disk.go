package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type SpaceCheck struct {
	Path           string
	AvailableBytes uint64
	RequiredBytes  uint64
	Enough         bool
}

var availableDiskFn = availableDisk

// CheckDiskSpace compares mediaBytes plus a 10% margin with the space free
// for the current user on the volume holding dest. dest may not exist yet;
// its nearest existing parent is measured instead.
func CheckDiskSpace(dest string, mediaBytes uint64) (SpaceCheck, error) {
	probe, err := existingAncestor(dest)
	if err != nil {
		return SpaceCheck{}, err
	}

	available, err := availableDiskFn(probe)
	if err != nil {
		return SpaceCheck{}, fmt.Errorf("free space of %s: %w", probe, err)
	}

	required := addMargin(mediaBytes)
	return SpaceCheck{
		Path:           probe,
		AvailableBytes: available,
		RequiredBytes:  required,
		Enough:         available >= required,
	}, nil
}

func existingAncestor(path string) (string, error) {
	current, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(current); err == nil {
			return current, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing folder above %s", path)
		}
		current = parent
	}
}

func addMargin(v uint64) uint64 {
	extra := v / 10
	if v%10 != 0 {
		extra++
	}
	if ^uint64(0)-v < extra {
		return ^uint64(0)
	}
	return v + extra
}

func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
