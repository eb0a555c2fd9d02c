package dates

import (
	"fmt"
	"os"
	"time"
)

var statFn = os.Stat

// FileTime returns the file's birth time where the platform records one and
// its modification time otherwise.
func FileTime(path string) (time.Time, Source, error) {
	info, err := statFn(path)
	if err != nil {
		return time.Time{}, SourceNone, fmt.Errorf("stat %s: %w", path, err)
	}
	if bt, ok := birthTime(path, info); ok {
		return bt, SourceBirthTime, nil
	}
	return info.ModTime(), SourceModTime, nil
}
