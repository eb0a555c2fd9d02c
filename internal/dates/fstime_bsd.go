//go:build darwin || freebsd

package dates

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

func birthTime(path string, _ os.FileInfo) (time.Time, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, false
	}
	sec, nsec := st.Btim.Unix()
	if sec == 0 {
		return time.Time{}, false
	}
	return time.Unix(sec, nsec), true
}
