package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Test helpers for symlink operations

func createTestSymlink(t *testing.T, target, link string) {
	t.Helper()
	if err := os.Symlink(target, link); err != nil {
		if runtime.GOOS == "windows" {
			t.Skipf("symlink creation failed on Windows: %v", err)
		}
		t.Fatalf("failed to create symlink: %v", err)
	}
}

func canonicalTempDir(t *testing.T) string {
	t.Helper()
	dir := createTempDir(t)
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	return resolved
}

// Tests for IsSymlink

func TestIsSymlink(t *testing.T) {
	tempDir := createTempDir(t)
	defer os.RemoveAll(tempDir)

	testFile := createTestFile(t, tempDir, "regular.txt", "content")
	testDir := filepath.Join(tempDir, "testdir")
	os.Mkdir(testDir, 0755)
	link := filepath.Join(tempDir, "link")
	createTestSymlink(t, testFile, link)

	tests := []struct {
		name   string
		path   string
		isLink bool
	}{
		{"regular file is not symlink", testFile, false},
		{"directory is not symlink", testDir, false},
		{"symlink is detected", link, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isLink, err := IsSymlink(tt.path)
			if err != nil {
				t.Fatalf("IsSymlink failed: %v", err)
			}
			if isLink != tt.isLink {
				t.Errorf("Expected %v, got %v", tt.isLink, isLink)
			}
		})
	}

	t.Run("missing path", func(t *testing.T) {
		if _, err := IsSymlink(filepath.Join(tempDir, "missing")); err == nil {
			t.Error("Expected error for missing path")
		}
	})
}

// Tests for CanonicalPath

func TestCanonicalPath(t *testing.T) {
	tempDir := canonicalTempDir(t)
	defer os.RemoveAll(tempDir)

	realDir := filepath.Join(tempDir, "real")
	os.Mkdir(realDir, 0755)
	createTestSymlink(t, realDir, filepath.Join(tempDir, "alias"))

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"existing directory", realDir, realDir},
		{"dot segments are cleaned", filepath.Join(tempDir, "real", "..", "real"), realDir},
		{"symlinked directory resolves", filepath.Join(tempDir, "alias"), realDir},
		{"missing leaf under symlink", filepath.Join(tempDir, "alias", "new.txt"), filepath.Join(realDir, "new.txt")},
		{"missing chain", filepath.Join(tempDir, "a", "b", "c"), filepath.Join(tempDir, "a", "b", "c")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalPath(tt.path)
			if err != nil {
				t.Fatalf("CanonicalPath failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// Tests for IsWithin

func TestIsWithin(t *testing.T) {
	base := filepath.FromSlash("/srv/data")

	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{"base itself", "/srv/data", true},
		{"child", "/srv/data/a.txt", true},
		{"nested child", "/srv/data/x/y/z", true},
		{"parent", "/srv", false},
		{"sibling with shared prefix", "/srv/data2/file", false},
		{"escape via dot dot", "/srv/data/../other", false},
		{"file named with leading dots", "/srv/data/..hidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWithin(base, filepath.FromSlash(tt.target)); got != tt.want {
				t.Errorf("IsWithin(%q, %q) = %v, want %v", base, tt.target, got, tt.want)
			}
		})
	}
}

// Tests for ValidateSymlinkTarget

func TestValidateSymlinkTarget(t *testing.T) {
	tempDir := canonicalTempDir(t)
	defer os.RemoveAll(tempDir)
	outside := canonicalTempDir(t)
	defer os.RemoveAll(outside)

	inner := createTestFile(t, tempDir, "inner.txt", "in")
	outer := createTestFile(t, outside, "outer.txt", "out")

	t.Run("link inside base", func(t *testing.T) {
		link := filepath.Join(tempDir, "ok-link")
		createTestSymlink(t, inner, link)
		resolved, err := ValidateSymlinkTarget(link, tempDir)
		if err != nil {
			t.Fatalf("ValidateSymlinkTarget failed: %v", err)
		}
		if resolved != inner {
			t.Errorf("Expected %q, got %q", inner, resolved)
		}
	})

	t.Run("link escaping base", func(t *testing.T) {
		link := filepath.Join(tempDir, "bad-link")
		createTestSymlink(t, outer, link)
		_, err := ValidateSymlinkTarget(link, tempDir)
		if err == nil || !strings.Contains(err.Error(), "not within") {
			t.Errorf("Expected containment error, got %v", err)
		}
		if !errors.Is(err, ErrSymlinkOutsideBase) {
			t.Errorf("Expected ErrSymlinkOutsideBase, got %v", err)
		}
	})

	t.Run("broken link", func(t *testing.T) {
		link := filepath.Join(tempDir, "broken-link")
		createTestSymlink(t, filepath.Join(tempDir, "nowhere"), link)
		if _, err := ValidateSymlinkTarget(link, tempDir); err == nil {
			t.Error("Expected error for broken link")
		}
	})

	t.Run("not a link", func(t *testing.T) {
		_, err := ValidateSymlinkTarget(inner, tempDir)
		if err == nil || !strings.Contains(err.Error(), "not a symbolic link") {
			t.Errorf("Expected not-a-link error, got %v", err)
		}
	})
}
