package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"disc/pkg/fileops"
)

// ValidateRoot rejects system locations as a sandbox root: the filesystem
// root, OS directories and sensitive directories in the user's home.
// Anything else under the home directory or the temp directory is allowed.
func ValidateRoot(path string) error {
	abs, err := fileops.CanonicalPath(path)
	if err != nil {
		return fmt.Errorf("cannot resolve root %s: %w", path, err)
	}

	if filepath.Dir(abs) == abs {
		return fmt.Errorf("refusing to use the filesystem root as sandbox root")
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		if canonical, err := fileops.CanonicalPath(home); err == nil {
			home = canonical
		}
		for _, dir := range []string{".ssh", ".gnupg"} {
			if fileops.IsWithin(filepath.Join(home, dir), abs) {
				return fmt.Errorf("refusing to use %s as sandbox root: reserved directory", abs)
			}
		}
		if fileops.IsWithin(home, abs) {
			return nil
		}
	}
	if tmp, err := fileops.CanonicalPath(os.TempDir()); err == nil && fileops.IsWithin(tmp, abs) {
		return nil
	}

	for _, reserved := range reservedDirectories() {
		r, err := fileops.CanonicalPath(reserved)
		if err != nil {
			r = reserved
		}
		if fileops.IsWithin(r, abs) || strings.EqualFold(r, abs) {
			return fmt.Errorf("refusing to use %s as sandbox root: reserved directory %s", abs, reserved)
		}
	}
	return nil
}

func reservedDirectories() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Windows`,
			`C:\Program Files`,
			`C:\Program Files (x86)`,
			`C:\ProgramData\Microsoft`,
		}
	case "darwin":
		return []string{
			"/System", "/bin", "/sbin", "/usr/bin", "/usr/sbin", "/etc",
			"/var/log", "/var/db", "/var/root", "/Library/System",
			"/Applications", "/private/etc",
		}
	default:
		return []string{
			"/bin", "/sbin", "/usr/bin", "/usr/sbin", "/etc", "/boot",
			"/dev", "/proc", "/sys", "/var/log", "/var/lib", "/var/cache",
			"/root",
		}
	}
}
