//go:build windows

package dates

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

func birthTime(_ string, info os.FileInfo) (time.Time, bool) {
	data, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok || data == nil {
		return time.Time{}, false
	}
	ft := windows.Filetime{
		LowDateTime:  data.CreationTime.LowDateTime,
		HighDateTime: data.CreationTime.HighDateTime,
	}
	if ft.LowDateTime == 0 && ft.HighDateTime == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ft.Nanoseconds()), true
}
