package treeops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"disc/internal/logging"
	"disc/internal/sandbox"
	"disc/pkg/fileops"
)

// CopyFailure is one entry that could not be copied. Path is a display path
// and Err a *sandbox.PathError for it.
type CopyFailure struct {
	Path string
	Err  error
}

// CopyError reports a partially completed CopyTree. Entries not listed in
// Failures were copied; nothing is rolled back.
type CopyError struct {
	Dest     string
	Failures []CopyFailure
}

func (e *CopyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "copy to %s: %d entries failed", e.Dest, len(e.Failures))
	for i, f := range e.Failures {
		if i == 3 {
			fmt.Fprintf(&b, "; and %d more", len(e.Failures)-i)
			break
		}
		fmt.Fprintf(&b, "; %v", f.Err)
	}
	return b.String()
}

func (e *CopyError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures)+1)
	errs = append(errs, sandbox.ErrWrite)
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// CopyTree copies the directory src to the logical path dest and returns
// the resolved destination.
//
// dest must not exist yet and must not lie inside src; both are checked
// before anything is written. Directories are created before their contents
// are copied. The copy is best-effort: a failing entry is recorded in the
// returned *CopyError and the walk continues, leaving a partial copy that
// the caller has to clean up.
func (t *Tree) CopyTree(src sandbox.ResolvedPath, dest string) (sandbox.ResolvedPath, error) {
	if err := t.sb.ExistsRequired(src, sandbox.KindDirectory); err != nil {
		return sandbox.ResolvedPath{}, err
	}
	to, err := t.sb.Resolve(dest, sandbox.KindAny)
	if err != nil {
		return sandbox.ResolvedPath{}, err
	}
	display := t.sb.Display(to)

	if _, err := os.Lstat(to.Abs); err == nil {
		return sandbox.ResolvedPath{}, sandbox.Wrap("copy", display, sandbox.ErrAlreadyExists, nil)
	}
	if fileops.IsWithin(src.Abs, to.Abs) {
		return sandbox.ResolvedPath{}, sandbox.Wrap("copy", display, ErrDestinationInsideSource, nil)
	}

	srcInfo, err := os.Stat(src.Abs)
	if err != nil {
		return sandbox.ResolvedPath{}, sandbox.Wrap("copy", t.sb.Display(src), nil, err)
	}
	if err := t.sb.EnsureParent(to); err != nil {
		return sandbox.ResolvedPath{}, err
	}
	if err := makeDir(to.Abs, srcInfo.Mode().Perm()); err != nil {
		return sandbox.ResolvedPath{}, sandbox.Wrap("copy", display, nil, err)
	}

	var (
		mu       sync.Mutex
		failures []CopyFailure
	)
	fail := func(path string, err error) {
		shown := t.sb.StripRootPath(path, true)
		var pathErr *sandbox.PathError
		if !errors.As(err, &pathErr) {
			err = sandbox.Wrap("copy", shown, nil, err)
		}
		mu.Lock()
		failures = append(failures, CopyFailure{Path: shown, Err: err})
		mu.Unlock()
	}

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, src.Abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			fail(p, err)
			return nil
		}
		rel, err := filepath.Rel(src.Abs, p)
		if err != nil || rel == "." {
			return nil
		}
		target := filepath.Join(to.Abs, rel)

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				fail(p, err)
				return filepath.SkipDir
			}
			if err := makeDir(target, info.Mode().Perm()); err != nil {
				fail(target, err)
				return filepath.SkipDir
			}
		case d.Type()&fs.ModeSymlink != 0:
			if err := t.copySymlink(p, target); err != nil {
				fail(p, err)
			}
		case d.Type().IsRegular():
			if _, err := fileops.CopyFileExclusive(p, target); err != nil {
				fail(target, err)
			}
		default:
			fail(p, fmt.Errorf("unsupported file type %s", d.Type()))
		}
		return nil
	})
	if walkErr != nil {
		fail(src.Abs, walkErr)
	}

	if len(failures) > 0 {
		logging.Warn("Tree copy incomplete", "src", t.sb.Display(src), "dest", display, "failures", len(failures))
		return to, &CopyError{Dest: display, Failures: failures}
	}
	logging.Debug("Copied tree", "src", t.sb.Display(src), "dest", display)
	return to, nil
}

// copySymlink recreates the link at p as target. Links whose destination
// lies outside the sandbox are not copied.
func (t *Tree) copySymlink(p, target string) error {
	if _, err := fileops.ValidateSymlinkTarget(p, t.sb.Root()); err != nil {
		if errors.Is(err, fileops.ErrSymlinkOutsideBase) {
			return sandbox.Wrap("copy", t.sb.StripRootPath(p, true), sandbox.ErrPathEscapesRoot, errors.New("symlink target is outside the root"))
		}
		return err
	}
	linkTarget, err := os.Readlink(p)
	if err != nil {
		return err
	}
	return os.Symlink(linkTarget, target)
}

func makeDir(path string, perm os.FileMode) error {
	if err := os.Mkdir(path, perm); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fileops.ErrDestinationExists
		}
		return err
	}
	return os.Chmod(path, perm)
}
