// Package copier copies files into a folder without ever replacing what is
// already there. A destination name that exists is skipped, which makes
// repeated runs over the same source safe.
package copier

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

type Outcome int

const (
	Copied Outcome = iota + 1
	SkippedExisting
)

func (o Outcome) String() string {
	switch o {
	case Copied:
		return "copied"
	case SkippedExisting:
		return "skipped-existing"
	default:
		return "unknown"
	}
}

// PathTypeConflictError means the destination name is taken by something that
// is not a regular file.
type PathTypeConflictError struct {
	Path string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("destination %q exists and is a %s, not a file", e.Path, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

var (
	renameFn = os.Rename
	mkdirFn  = os.MkdirAll
)

// Check reports what CopyIfAbsent would do without touching the filesystem.
func Check(src string, dstDir string) (Outcome, string, error) {
	dst := filepath.Join(dstDir, filepath.Base(src))
	exists, err := destinationExists(dst)
	if err != nil {
		return 0, dst, err
	}
	if exists {
		return SkippedExisting, dst, nil
	}
	return Copied, dst, nil
}

// CopyIfAbsent creates dstDir if needed and copies src into it under the same
// base name unless that name already exists. The copy is written to a
// temporary file first so an interrupted run never leaves a truncated file
// under the final name. The copy keeps the source's modification time.
func CopyIfAbsent(src string, dstDir string) (Outcome, string, error) {
	dst := filepath.Join(dstDir, filepath.Base(src))

	if err := mkdirFn(dstDir, 0o755); err != nil {
		return 0, dst, fmt.Errorf("create %s: %w", dstDir, err)
	}

	exists, err := destinationExists(dst)
	if err != nil {
		return 0, dst, err
	}
	if exists {
		return SkippedExisting, dst, nil
	}

	if err := copyFile(src, dst); err != nil {
		return 0, dst, err
	}
	return Copied, dst, nil
}

func destinationExists(dst string) (bool, error) {
	fi, err := os.Lstat(dst)
	if err == nil {
		if fi.IsDir() {
			return false, &PathTypeConflictError{Path: dst, Got: "directory"}
		}
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", dst, err)
}

func copyFile(src string, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("source %s is not a regular file", src)
	}

	dir, name := filepath.Split(dst)
	// Leading dot keeps half-written files out of photo viewers.
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chtimes(tmpPath, time.Now(), info.ModTime()); err != nil {
		return fmt.Errorf("set times: %w", err)
	}

	if exists, err := destinationExists(dst); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("%s appeared during copy: %w", dst, os.ErrExist)
	}
	if err := renameFn(tmpPath, dst); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	cleanup = false
	return nil
}
