package preflight

import (
	"os/exec"
	"os/user"
	"runtime"
	"strings"

	"github.com/vchilikov/mediasort/internal/exifcmd"
)

// Dependency is an external tool mediasort can use. Optional tools only
// enable extra behaviour; the run goes on without them.
type Dependency struct {
	Name       string
	Purpose    string
	Optional   bool
	InstallCmd []string
}

var (
	currentGOOS     = runtime.GOOS
	lookPathFn      = exec.LookPath
	resolveExiftool = exifcmd.Resolve
	isRootUserFn    = currentUserIsRoot
)

// CheckDependencies returns the tools that could not be found. override is the
// configured exiftool location, if any.
func CheckDependencies(override string) []Dependency {
	var missing []Dependency

	if _, err := resolveExiftool(override); err != nil {
		missing = append(missing, Dependency{
			Name:       "exiftool",
			Purpose:    "reads the date taken of images without EXIF",
			Optional:   true,
			InstallCmd: installCommand("exiftool"),
		})
	}

	return missing
}

// InstallHint renders dep's install command, or "" when none is known.
func InstallHint(dep Dependency) string {
	return strings.Join(dep.InstallCmd, " ")
}

func installCommand(name string) []string {
	switch currentGOOS {
	case "darwin":
		if commandAvailable("brew") {
			return []string{"brew", "install", name}
		}
	case "linux":
		return linuxInstallCommand(name)
	case "windows":
		return windowsInstallCommand(name)
	}
	return nil
}

func linuxInstallCommand(name string) []string {
	var base []string

	switch {
	case commandAvailable("apt-get"):
		base = []string{"apt-get", "install", "-y", linuxPackageName(name, "apt-get")}
	case commandAvailable("dnf"):
		base = []string{"dnf", "install", "-y", linuxPackageName(name, "dnf")}
	case commandAvailable("pacman"):
		base = []string{"pacman", "-S", "--noconfirm", linuxPackageName(name, "pacman")}
	default:
		return nil
	}

	if isRootUserFn() {
		return base
	}
	if !commandAvailable("sudo") {
		return nil
	}
	return append([]string{"sudo"}, base...)
}

func windowsInstallCommand(name string) []string {
	if name != "exiftool" || !commandAvailable("winget") {
		return nil
	}
	return []string{"winget", "install", "--id", "OliverBetz.ExifTool", "--exact"}
}

func linuxPackageName(name string, manager string) string {
	if name != "exiftool" {
		return name
	}

	switch manager {
	case "apt-get":
		return "libimage-exiftool-perl"
	case "dnf":
		return "perl-Image-ExifTool"
	case "pacman":
		return "perl-image-exiftool"
	default:
		return name
	}
}

func commandAvailable(name string) bool {
	_, err := lookPathFn(name)
	return err == nil
}

func currentUserIsRoot() bool {
	currentUser, err := user.Current()
	if err != nil {
		return false
	}
	return currentUser.Uid == "0"
}
