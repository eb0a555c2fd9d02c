package exifcmd

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

var (
	currentGOOS = runtime.GOOS
	lookPathFn  = exec.LookPath
)

// Candidates lists the executable names tried on goos, in order.
func Candidates(goos string) []string {
	if goos == "windows" {
		return []string{"exiftool", "exiftool.exe", "exiftool(-k).exe"}
	}
	return []string{"exiftool"}
}

// Resolve finds the exiftool executable. A non-empty override (a path or a
// command name from the config file) is the only candidate tried.
func Resolve(override string) (string, error) {
	candidates := Candidates(currentGOOS)
	if o := strings.TrimSpace(override); o != "" {
		candidates = []string{o}
	}
	for _, candidate := range candidates {
		if resolved, err := lookPathFn(candidate); err == nil {
			return resolved, nil
		}
	}

	return "", fmt.Errorf("exiftool executable not found (tried: %s)", strings.Join(candidates, ", "))
}
