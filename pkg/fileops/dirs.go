package fileops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

// DefaultDirMode is the mode used for directories created on behalf of a
// caller that did not ask for anything narrower.
const DefaultDirMode os.FileMode = 0o777

// umaskMu serialises umask overrides. The umask is process-wide, so two
// overlapping overrides would restore each other's values.
var umaskMu sync.Mutex

// EnsureDirectoryExists creates a directory and all necessary parent
// directories. This is equivalent to `mkdir -p` and is safe to call multiple
// times.
//
// The process umask is cleared while the directories are created so perm is
// applied verbatim, and restored before the function returns.
func EnsureDirectoryExists(path string, perm os.FileMode) error {
	if info, err := os.Stat(path); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("failed to create directory: %w", &fs.PathError{Op: "mkdir", Path: path, Err: syscall.ENOTDIR})
		}
		return nil
	}

	if err := withUmask(0, func() error { return os.MkdirAll(path, perm) }); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// EnsureParentDirectory creates every missing ancestor of target. The final
// path segment itself is left alone.
func EnsureParentDirectory(target string, perm os.FileMode) error {
	parent := filepath.Dir(filepath.Clean(target))
	if parent == target {
		return nil
	}
	return EnsureDirectoryExists(parent, perm)
}

func withUmask(mask int, fn func() error) error {
	umaskMu.Lock()
	defer umaskMu.Unlock()

	old := setUmask(mask)
	defer setUmask(old)

	return fn()
}
