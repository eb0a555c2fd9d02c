//go:build windows

package preflight

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func availableDisk(path string) (uint64, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}

	// Caller-visible free bytes, which honours per-user quotas.
	var freeBytesAvailable uint64
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &freeBytesAvailable, nil, nil); err != nil {
		return 0, fmt.Errorf("GetDiskFreeSpaceEx: %w", err)
	}
	return freeBytesAvailable, nil
}
