package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IsSymlink checks if a given path is a symbolic link.
// This function uses lstat to examine the file without following symlinks.
func IsSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat path: %w", err)
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// CanonicalPath returns the absolute, cleaned form of path with every symbolic
// link in its existing portion resolved.
//
// The path does not have to exist. The deepest existing ancestor is resolved
// with filepath.EvalSymlinks and the missing remainder is appended to it, so
// "root/link/new.txt" where link points elsewhere canonicalises to
// "<link target>/new.txt".
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve absolute path: %w", err)
	}

	existing := abs
	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("cannot resolve symlinks in %s: %w", existing, err)
		}

		parent := filepath.Dir(existing)
		if parent == existing {
			return "", fmt.Errorf("cannot resolve symlinks in %s: %w", abs, err)
		}
		missing = append(missing, filepath.Base(existing))
		existing = parent
	}
}

// IsWithin reports whether target equals base or lies beneath it. Both paths
// are compared lexically, so they should already be canonical.
func IsWithin(base, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// ErrSymlinkOutsideBase is returned by ValidateSymlinkTarget for a link that
// resolves outside the allowed base.
var ErrSymlinkOutsideBase = errors.New("symlink target is outside the allowed base")

// ValidateSymlinkTarget checks that the link at linkPath resolves to a
// location inside allowedBase. Broken links are rejected.
func ValidateSymlinkTarget(linkPath, allowedBase string) (string, error) {
	isLink, err := IsSymlink(linkPath)
	if err != nil {
		return "", fmt.Errorf("cannot check if path is symlink: %w", err)
	}
	if !isLink {
		return "", fmt.Errorf("path is not a symbolic link: %s", linkPath)
	}

	resolved, err := filepath.EvalSymlinks(linkPath)
	if err != nil {
		return "", fmt.Errorf("symlink resolution failed: %w", err)
	}

	base, err := CanonicalPath(allowedBase)
	if err != nil {
		return "", err
	}

	if !IsWithin(base, resolved) {
		return "", fmt.Errorf("symlink target is not within %s: %s: %w", allowedBase, resolved, ErrSymlinkOutsideBase)
	}
	return resolved, nil
}
