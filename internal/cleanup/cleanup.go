// Package cleanup removes sidecar JSON files left next to exported media.
package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vchilikov/mediasort/internal/layout"
)

var removeFile = os.Remove

// DeleteJSON deletes every *.json file under root (extension matched
// case-insensitively) and returns how many were removed. mediasort's own
// state folder is left alone. A file that cannot be removed does not stop
// the sweep; all such failures are joined into the returned error.
func DeleteJSON(root string) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", root)
	}

	deleted := 0
	var errs []error
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			errs = append(errs, walkErr)
			return nil
		}
		if d.IsDir() {
			if path != root && d.Name() == layout.StateDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".json") {
			return nil
		}
		if err := removeFile(path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
			return nil
		}
		deleted++
		return nil
	})
	if err != nil {
		return deleted, fmt.Errorf("walk %s: %w", root, err)
	}
	return deleted, errors.Join(errs...)
}
