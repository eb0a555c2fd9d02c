package organizer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vchilikov/mediasort/internal/layout"
	"github.com/vchilikov/mediasort/internal/mediaext"
)

var ErrInvalidRoot = errors.New("invalid source folder")

// MediaFile is one image or video found under the source folder.
type MediaFile struct {
	Path string
	Ext  string
	Kind mediaext.Kind
	Size int64
}

type ScanResult struct {
	// Root is the absolute source folder; Destination the absolute output root.
	Root        string
	Destination string
	Files       []MediaFile
	Unsupported []string
	// Skipped lists the output folders left out of the walk.
	Skipped    []string
	WalkErrors []string
}

// TotalBytes is the combined size of all media files in the scan.
func (s ScanResult) TotalBytes() uint64 {
	var total uint64
	for _, f := range s.Files {
		if f.Size > 0 {
			total += uint64(f.Size)
		}
	}
	return total
}

var walkDir = filepath.WalkDir

// Scan walks source and classifies every regular file. Folders the organizer
// writes into destRoot are skipped and listed in Skipped, so a run never picks
// up its own output. Unreadable entries are recorded and skipped.
func Scan(source string, destRoot string) (ScanResult, error) {
	var result ScanResult

	source, err := checkRoot(source)
	if err != nil {
		return result, err
	}
	if destRoot == "" {
		destRoot = source
	}
	destRoot = cleanAbs(destRoot)
	result.Root = source
	result.Destination = destRoot

	err = walkDir(source, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == source {
				return walkErr
			}
			result.WalkErrors = append(result.WalkErrors, fmt.Sprintf("%s: %v", path, walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != source && skipDir(path, destRoot, source) {
				result.Skipped = append(result.Skipped, path)
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(d.Name()))
		kind := mediaext.Classify(ext)
		if kind == mediaext.Unsupported {
			result.Unsupported = append(result.Unsupported, path)
			return nil
		}

		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		result.Files = append(result.Files, MediaFile{
			Path: path,
			Ext:  ext,
			Kind: kind,
			Size: size,
		})
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("walk %s: %w", source, err)
	}
	return result, nil
}

func skipDir(path string, destRoot string, source string) bool {
	if path == destRoot && destRoot != source {
		return true
	}
	return layout.IsOutputPath(destRoot, path)
}

func checkRoot(source string) (string, error) {
	source = cleanAbs(source)
	info, err := os.Stat(source)
	if err != nil {
		return source, fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return source, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, source)
	}
	return source, nil
}

func cleanAbs(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
