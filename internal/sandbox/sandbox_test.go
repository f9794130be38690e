package sandbox

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func newTestSandbox(t *testing.T) (*Sandbox, string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	s, err := New(root)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, root
}

func createTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file %s: %v", path, err)
	}
}

func TestNew(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		createTestFile(t, file, "x")
		_, err := New(file)
		if !errors.Is(err, ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("empty root", func(t *testing.T) {
		if _, err := New(" "); !errors.Is(err, ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("root is canonicalised", func(t *testing.T) {
		s, root := newTestSandbox(t)
		if err := s.SetRoot(filepath.Join(root, ".", "sub", "..")); err != nil {
			t.Fatalf("SetRoot failed: %v", err)
		}
		if s.Root() != root {
			t.Errorf("expected root %q, got %q", root, s.Root())
		}
	})

	t.Run("zero value has no root", func(t *testing.T) {
		var s Sandbox
		if _, err := s.Resolve("/a.txt", KindAny); !errors.Is(err, ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})
}

func TestResolve(t *testing.T) {
	s, root := newTestSandbox(t)
	createTestFile(t, filepath.Join(root, "files", "report.txt"), "report")

	tests := []struct {
		name     string
		logical  string
		expected string
	}{
		{"root relative with separator", "/files/report.txt", filepath.Join(root, "files", "report.txt")},
		{"root relative without separator", "files/report.txt", filepath.Join(root, "files", "report.txt")},
		{"empty is root", "", root},
		{"separator is root", "/", root},
		{"inner dot dot stays inside", "/files/../files/report.txt", filepath.Join(root, "files", "report.txt")},
		{"absolute under root kept", filepath.Join(root, "files"), filepath.Join(root, "files")},
		{"foreign absolute forced under root", "/etc/hosts", filepath.Join(root, "etc", "hosts")},
		{"missing entries allowed", "/new/dir/file.txt", filepath.Join(root, "new", "dir", "file.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Resolve(tt.logical, KindAny)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.logical, err)
			}
			if got.Abs != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.logical, got.Abs, tt.expected)
			}
		})
	}
}

func TestResolveContainment(t *testing.T) {
	s, root := newTestSandbox(t)

	escapes := []string{
		"/../../etc/passwd",
		"..",
		"../sibling",
		"/a/../../..",
		"a/b/../../../x",
		strings.Repeat("../", 20) + "etc",
	}

	for _, logical := range escapes {
		t.Run(logical, func(t *testing.T) {
			_, err := s.Resolve(logical, KindAny)
			if !errors.Is(err, ErrPathEscapesRoot) {
				t.Errorf("expected ErrPathEscapesRoot for %q, got %v", logical, err)
			}
		})
	}

	// Whatever the number of segments, a successful result never leaves root.
	for depth := 0; depth < 6; depth++ {
		for ups := 0; ups < 8; ups++ {
			logical := strings.Repeat("/d", depth) + strings.Repeat("/..", ups) + "/f"
			got, err := s.Resolve(logical, KindAny)
			if err != nil {
				if !errors.Is(err, ErrPathEscapesRoot) {
					t.Errorf("Resolve(%q): unexpected error %v", logical, err)
				}
				continue
			}
			if got.Abs != root && !strings.HasPrefix(got.Abs, root+string(filepath.Separator)) {
				t.Errorf("Resolve(%q) = %q escapes %q", logical, got.Abs, root)
			}
		}
	}
}

func TestResolveSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on Windows")
	}
	s, root := newTestSandbox(t)
	outside, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	createTestFile(t, filepath.Join(outside, "secret.txt"), "secret")
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	os.Mkdir(filepath.Join(root, "inside"), 0755)
	if err := os.Symlink(filepath.Join(root, "inside"), filepath.Join(root, "alias")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	t.Run("link pointing outside is rejected", func(t *testing.T) {
		_, err := s.Resolve("/escape/secret.txt", KindAny)
		if !errors.Is(err, ErrPathEscapesRoot) {
			t.Errorf("expected ErrPathEscapesRoot, got %v", err)
		}
	})

	t.Run("missing leaf behind outside link is rejected", func(t *testing.T) {
		_, err := s.Resolve("/escape/new.txt", KindAny)
		if !errors.Is(err, ErrPathEscapesRoot) {
			t.Errorf("expected ErrPathEscapesRoot, got %v", err)
		}
	})

	t.Run("link inside root resolves to its target", func(t *testing.T) {
		got, err := s.Resolve("/alias/new.txt", KindAny)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if want := filepath.Join(root, "inside", "new.txt"); got.Abs != want {
			t.Errorf("expected %q, got %q", want, got.Abs)
		}
	})
}

func TestResolveRequiredKind(t *testing.T) {
	s, root := newTestSandbox(t)
	createTestFile(t, filepath.Join(root, "files", "123.txt"), "123")

	tests := []struct {
		name    string
		logical string
		kind    Kind
		wantErr bool
	}{
		{"existing file as file", "/files/123.txt", KindFile, false},
		{"existing dir as directory", "/files", KindDirectory, false},
		{"missing file", "/xyz.txt", KindFile, true},
		{"file as directory", "/files/123.txt", KindDirectory, true},
		{"directory as file", "/files", KindFile, true},
		{"missing with no assertion", "/xyz.txt", KindAny, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Resolve(tt.logical, tt.kind)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Required != tt.kind {
					t.Errorf("expected required kind %v, got %v", tt.kind, got.Required)
				}
				return
			}
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			var pathErr *PathError
			if !errors.As(err, &pathErr) {
				t.Fatalf("expected *PathError, got %T", err)
			}
			if pathErr.Kind != tt.kind {
				t.Errorf("expected kind %v in error, got %v", tt.kind, pathErr.Kind)
			}
			if strings.Contains(err.Error(), root) {
				t.Errorf("error leaks root path: %v", err)
			}
		})
	}

	t.Run("missing file keeps OS cause", func(t *testing.T) {
		_, err := s.Resolve("/xyz.txt", KindFile)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected fs.ErrNotExist in chain, got %v", err)
		}
	})
}

func TestStripRoot(t *testing.T) {
	root := "/srv/app"

	tests := []struct {
		name     string
		path     string
		strict   bool
		expected string
	}{
		{"strict strips prefix", "/srv/app/file/path.txt", true, "/file/path.txt"},
		{"strict root itself", "/srv/app", true, "/"},
		{"strict foreign path unchanged", "/file/path.txt", true, "/file/path.txt"},
		{"strict shared prefix sibling unchanged", "/srv/application/x", true, "/srv/application/x"},
		{"non strict unchanged", "/srv/app/file/path.txt", false, "/srv/app/file/path.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripRoot(root, tt.path, tt.strict); got != tt.expected {
				t.Errorf("StripRoot(%q, %v) = %q, want %q", tt.path, tt.strict, got, tt.expected)
			}
		})
	}
}

func TestStripRootRoundTrip(t *testing.T) {
	root := "/srv/app"
	for _, p := range []string{"/a", "/a/b/c.txt", "/.hidden", "/x y/z"} {
		full := root + p
		stripped := StripRoot(root, full, true)
		if stripped != p {
			t.Errorf("StripRoot(%q) = %q, want %q", full, stripped, p)
		}
		if rejoined := filepath.Join(root, stripped); rejoined != full {
			t.Errorf("rejoined %q, want %q", rejoined, full)
		}
	}
}

func TestAutoGenMissingDirectory(t *testing.T) {
	s, root := newTestSandbox(t)

	if err := s.AutoGenMissingDirectory("/working/x/y/z/newtestfolder.txt"); err != nil {
		t.Fatalf("AutoGenMissingDirectory failed: %v", err)
	}
	if !s.Exists("/working/x/y/z") {
		t.Error("ancestor directories were not created")
	}
	if s.Exists("/working/x/y/z/newtestfolder.txt") {
		t.Error("final segment must not be created")
	}

	if err := s.AutoGenMissingDirectory("/working/x/y/z/newtestfolder.txt"); err != nil {
		t.Errorf("second call failed: %v", err)
	}

	if err := s.AutoGenMissingDirectory("/working/x/a/b/newtestfolder.txt"); err != nil {
		t.Fatalf("AutoGenMissingDirectory failed: %v", err)
	}
	if info, err := os.Stat(filepath.Join(root, "working", "x", "a", "b")); err != nil || !info.IsDir() {
		t.Errorf("expected directory, got %v", err)
	}

	if err := s.AutoGenMissingDirectory("/../outside/file.txt"); !errors.Is(err, ErrPathEscapesRoot) {
		t.Errorf("expected ErrPathEscapesRoot, got %v", err)
	}
}

func TestExists(t *testing.T) {
	s, root := newTestSandbox(t)
	createTestFile(t, filepath.Join(root, "files", "123.txt"), "123")
	os.MkdirAll(filepath.Join(root, "files", "testfolder"), 0755)

	tests := []struct {
		logical string
		want    bool
	}{
		{"/files/123.txt", true},
		{"/files/xyz.txt", false},
		{"/files/testfolder", true},
		{"/files/foobar", false},
		{"/../../etc/passwd", false},
	}
	for _, tt := range tests {
		t.Run(tt.logical, func(t *testing.T) {
			if got := s.Exists(tt.logical); got != tt.want {
				t.Errorf("Exists(%q) = %v, want %v", tt.logical, got, tt.want)
			}
		})
	}
}

func TestResolveString(t *testing.T) {
	s, root := newTestSandbox(t)

	full, err := s.ResolveString("/123.txt", false, KindAny)
	if err != nil {
		t.Fatal(err)
	}
	if full != filepath.Join(root, "123.txt") {
		t.Errorf("unexpected path %q", full)
	}

	stripped, err := s.ResolveString("/123.txt", true, KindAny)
	if err != nil {
		t.Fatal(err)
	}
	if stripped != "/123.txt" {
		t.Errorf("unexpected stripped path %q", stripped)
	}
}

func TestIndependentSandboxes(t *testing.T) {
	a, rootA := newTestSandbox(t)
	b, rootB := newTestSandbox(t)

	pa, _ := a.Resolve("/f", KindAny)
	pb, _ := b.Resolve("/f", KindAny)
	if pa.Abs != filepath.Join(rootA, "f") || pb.Abs != filepath.Join(rootB, "f") {
		t.Errorf("sandboxes share state: %q, %q", pa.Abs, pb.Abs)
	}
}
