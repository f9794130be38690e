//go:build unix

package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"
)

func TestEnsureDirectoryExistsRestoresUmask(t *testing.T) {
	tempDir := createTempDir(t)
	defer os.RemoveAll(tempDir)

	const mask = 0o022
	original := unix.Umask(mask)
	defer unix.Umask(original)

	// currentUmask reads the umask without changing it.
	currentUmask := func() int {
		m := unix.Umask(mask)
		unix.Umask(m)
		return m
	}

	t.Run("after success", func(t *testing.T) {
		if err := EnsureDirectoryExists(filepath.Join(tempDir, "ok", "nested"), 0o777); err != nil {
			t.Fatalf("EnsureDirectoryExists failed: %v", err)
		}
		if got := currentUmask(); got != mask {
			t.Errorf("Expected umask %o after success, got %o", mask, got)
		}
	})

	t.Run("after failure", func(t *testing.T) {
		file := createTestFile(t, tempDir, "plain.txt", "x")
		err := EnsureDirectoryExists(filepath.Join(file, "sub"), 0o777)
		if err == nil {
			t.Fatal("Expected error below a regular file")
		}
		if got := currentUmask(); got != mask {
			t.Errorf("Expected umask %o after failure, got %o", mask, got)
		}
	})
}

func TestEnsureDirectoryExistsOnFileIsENOTDIR(t *testing.T) {
	tempDir := createTempDir(t)
	defer os.RemoveAll(tempDir)

	file := createTestFile(t, tempDir, "plain.txt", "x")
	err := EnsureDirectoryExists(file, DefaultDirMode)

	var pathErr *os.PathError
	if !errors.As(err, &pathErr) || pathErr.Path != file {
		t.Fatalf("Expected *os.PathError for %s, got %v", file, err)
	}
	if !errors.Is(err, syscall.ENOTDIR) {
		t.Errorf("Expected ENOTDIR, got %v", err)
	}
}
