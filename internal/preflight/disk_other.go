//go:build !linux && !darwin && !freebsd && !windows

package preflight

import "errors"

var errDiskUnsupported = errors.New("free space check not supported on this platform")

func availableDisk(string) (uint64, error) {
	return 0, errDiskUnsupported
}
