package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrDestinationExists is returned by CopyFileExclusive when the destination
// path is already occupied.
var ErrDestinationExists = errors.New("destination already exists")

// CopyFileExclusive copies srcPath to destPath, failing with
// ErrDestinationExists if destPath already exists.
//
// The function uses a temporary file approach:
//  1. Creates a temporary file in the destination directory
//  2. Copies all data to the temporary file and syncs it
//  3. Hard-links the temporary file into place, which fails atomically if
//     the destination was created in the meantime
//  4. Removes the temporary name
//
// Filesystems without hard link support fall back to an O_EXCL create of the
// destination followed by a direct copy.
//
// The destination directory must exist. The copy keeps the permission bits of
// the source file.
func CopyFileExclusive(srcPath, destPath string) (int64, error) {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file: %w", err)
	}
	if srcInfo.IsDir() {
		return 0, fmt.Errorf("source is a directory: %s", srcPath)
	}

	if _, err := os.Lstat(destPath); err == nil {
		return 0, ErrDestinationExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("cannot inspect destination: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".copy-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	written, err := io.Copy(tempFile, srcFile)
	if err != nil {
		tempFile.Close()
		return 0, fmt.Errorf("failed to copy file contents: %w", err)
	}
	if err := tempFile.Chmod(srcInfo.Mode().Perm()); err != nil {
		tempFile.Close()
		return 0, fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return 0, fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temporary file: %w", err)
	}

	err = os.Link(tempPath, destPath)
	switch {
	case err == nil:
		return written, nil
	case errors.Is(err, fs.ErrExist):
		return 0, ErrDestinationExists
	}

	// No hard links here; copy straight into an exclusively created file.
	return copyIntoNewFile(tempPath, destPath, srcInfo.Mode().Perm())
}

func copyIntoNewFile(srcPath, destPath string, perm os.FileMode) (int64, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to reopen staged copy: %w", err)
	}
	defer src.Close()

	dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return 0, ErrDestinationExists
		}
		return 0, fmt.Errorf("failed to create destination: %w", err)
	}

	written, err := io.Copy(dest, src)
	if err == nil {
		err = dest.Sync()
	}
	if closeErr := dest.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(destPath)
		return 0, fmt.Errorf("failed to copy file contents: %w", err)
	}
	return written, nil
}
