package fileops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateBaseName checks that name is usable as a single path segment:
// not empty, not "." or "..", and free of path separators and NUL bytes.
//
// Usage example:
//
//	if err := fileops.ValidateBaseName("report-final.txt"); err != nil {
//	    return fmt.Errorf("invalid name: %w", err)
//	}
func ValidateBaseName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid name: %q", name)
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("name must not include a path: %q", name)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("name contains null bytes")
	}
	return nil
}

// ValidateDirectoryWritable checks that dirPath is an existing directory the
// current process may create entries in. Unlike a trial write it has no side
// effects.
func ValidateDirectoryWritable(dirPath string) error {
	info, err := os.Stat(dirPath)
	if err != nil {
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dirPath)
	}
	if !IsWritable(dirPath) {
		return fmt.Errorf("directory is not writable: %s", dirPath)
	}
	return nil
}

// ExpandPath expands a path that starts with "~/" to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
