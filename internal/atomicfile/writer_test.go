package atomicfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"disc/internal/sandbox"
)

func newTestWriter(t *testing.T) (*Writer, *sandbox.Sandbox, string) {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sb, err := sandbox.New(root)
	if err != nil {
		t.Fatalf("sandbox.New failed: %v", err)
	}
	return New(sb), sb, root
}

func resolve(t *testing.T, sb *sandbox.Sandbox, logical string) sandbox.ResolvedPath {
	t.Helper()
	p, err := sb.Resolve(logical, sandbox.KindAny)
	if err != nil {
		t.Fatalf("Resolve(%q) failed: %v", logical, err)
	}
	return p
}

func tempFiles(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, TempPrefix+"*"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestSaveCreatesMissingDirectory(t *testing.T) {
	w, sb, root := newTestWriter(t)

	content := []byte(`{"a":1}`)
	n, err := w.Save(resolve(t, sb, "/out/new.json"), content)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if n != len(content) {
		t.Errorf("expected %d bytes, got %d", len(content), n)
	}

	info, err := os.Stat(filepath.Join(root, "out"))
	if err != nil || !info.IsDir() {
		t.Fatalf("out directory was not created: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(root, "out", "new.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("expected exact content, got %q", got)
	}
	if left := tempFiles(t, filepath.Join(root, "out")); len(left) != 0 {
		t.Errorf("temporary files left behind: %v", left)
	}
}

func TestSaveReturnsByteCount(t *testing.T) {
	w, sb, _ := newTestWriter(t)

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"ascii", "hello"},
		{"multibyte", "héllo wörld"},
		{"with newline", "{\"a\":1}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := w.Save(resolve(t, sb, "/counts/"+tt.name+".txt"), []byte(tt.content))
			if err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if n != len(tt.content) {
				t.Errorf("expected %d bytes, got %d", len(tt.content), n)
			}
		})
	}
}

func TestSaveOverwritesAndKeepsMode(t *testing.T) {
	w, sb, root := newTestWriter(t)
	target := filepath.Join(root, "config.ini")
	if err := os.WriteFile(target, []byte("old content that is longer"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(target, 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := w.Save(resolve(t, sb, "/config.ini"), []byte("new")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, _ := os.ReadFile(target)
	if string(got) != "new" {
		t.Errorf("expected %q, got %q", "new", got)
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600 to be kept, got %o", info.Mode().Perm())
	}
}

func TestSaveNewFileMode(t *testing.T) {
	w, sb, root := newTestWriter(t)
	w.SetFileMode(0640)

	if _, err := w.Save(resolve(t, sb, "/mode.txt"), []byte("x")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(filepath.Join(root, "mode.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0640 {
		t.Errorf("expected mode 0640, got %o", info.Mode().Perm())
	}
}

func TestSaveWriteFailureLeavesTargetUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		existing *string
	}{
		{"existing target", strPtr("original")},
		{"absent target", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, sb, root := newTestWriter(t)
			target := filepath.Join(root, "data.txt")
			if tt.existing != nil {
				if err := os.WriteFile(target, []byte(*tt.existing), 0644); err != nil {
					t.Fatal(err)
				}
			}

			injected := errors.New("disk full")
			w.write = func(f *os.File, content []byte) (int, error) {
				f.Write(content[:len(content)/2])
				return 0, injected
			}

			_, err := w.Save(resolve(t, sb, "/data.txt"), []byte("replacement content"))
			if !errors.Is(err, sandbox.ErrWrite) {
				t.Fatalf("expected ErrWrite, got %v", err)
			}
			if !errors.Is(err, injected) {
				t.Errorf("expected injected cause in chain, got %v", err)
			}

			var writeErr *WriteError
			if !errors.As(err, &writeErr) {
				t.Fatalf("expected *WriteError, got %T", err)
			}
			if writeErr.Stage != StageWrite {
				t.Errorf("expected StageWrite, got %v", writeErr.Stage)
			}
			if !strings.HasPrefix(writeErr.TempPath, "/"+TempPrefix) {
				t.Errorf("expected display temp path, got %q", writeErr.TempPath)
			}

			got, readErr := os.ReadFile(target)
			if tt.existing == nil {
				if !os.IsNotExist(readErr) {
					t.Errorf("target should still be absent, got %v", readErr)
				}
			} else if string(got) != *tt.existing {
				t.Errorf("target changed to %q", got)
			}

			if _, err := os.Stat(filepath.Join(root, writeErr.TempPath)); err != nil {
				t.Errorf("temporary file named in error should exist: %v", err)
			}
		})
	}
}

func TestSaveRenameFailure(t *testing.T) {
	w, sb, root := newTestWriter(t)
	target := filepath.Join(root, "data.txt")
	os.WriteFile(target, []byte("original"), 0644)

	w.rename = func(oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: errors.New("cross-device link")}
	}

	_, err := w.Save(resolve(t, sb, "/data.txt"), []byte("fresh"))
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected *WriteError, got %v", err)
	}
	if writeErr.Stage != StageRename {
		t.Errorf("expected StageRename, got %v", writeErr.Stage)
	}
	if strings.Contains(err.Error(), root) {
		t.Errorf("error leaks root: %v", err)
	}

	orphan, readErr := os.ReadFile(filepath.Join(root, writeErr.TempPath))
	if readErr != nil || string(orphan) != "fresh" {
		t.Errorf("orphaned temp should hold new content, got %q, %v", orphan, readErr)
	}
	if got, _ := os.ReadFile(target); string(got) != "original" {
		t.Errorf("target changed to %q", got)
	}
}

func TestSaveTargetIsDirectory(t *testing.T) {
	w, sb, root := newTestWriter(t)
	os.Mkdir(filepath.Join(root, "dir"), 0755)

	_, err := w.Save(resolve(t, sb, "/dir"), []byte("x"))
	if !errors.Is(err, sandbox.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if left := tempFiles(t, root); len(left) != 0 {
		t.Errorf("temporary files created: %v", left)
	}
}

func TestSaveUnwritableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}
	w, sb, root := newTestWriter(t)
	locked := filepath.Join(root, "locked")
	os.Mkdir(locked, 0555)
	defer os.Chmod(locked, 0755)

	_, err := w.Save(resolve(t, sb, "/locked/file.txt"), []byte("x"))
	if !errors.Is(err, sandbox.ErrPermission) {
		t.Errorf("expected ErrPermission, got %v", err)
	}
}

func TestStageString(t *testing.T) {
	for stage, want := range map[Stage]string{StageTemp: "create temp", StageWrite: "write", StageRename: "rename"} {
		if stage.String() != want {
			t.Errorf("Stage(%d).String() = %q, want %q", int(stage), stage.String(), want)
		}
	}
}

func strPtr(s string) *string { return &s }
