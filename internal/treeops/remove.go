package treeops

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"disc/internal/logging"
	"disc/internal/sandbox"
)

// RemoveTree deletes everything below p, children before their parent. With
// removeRoot set p itself is removed too; otherwise it is left as an empty
// directory. A missing p is not an error. The sandbox root itself can be
// emptied but never removed.
func (t *Tree) RemoveTree(p sandbox.ResolvedPath, removeRoot bool) error {
	display := t.sb.Display(p)

	info, err := os.Lstat(p.Abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return sandbox.Wrap("remove", display, nil, err)
	}

	if removeRoot && p.Abs == t.sb.Root() {
		return sandbox.Wrap("remove", display, sandbox.ErrPermission, errors.New("refusing to remove sandbox root"))
	}

	if info.IsDir() {
		if err := t.removeChildren(p.Abs); err != nil {
			return err
		}
	}
	if removeRoot {
		if err := t.remove(p.Abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return sandbox.Wrap("remove", display, nil, err)
		}
	}

	logging.Debug("Removed tree", "path", display, "removeRoot", removeRoot)
	return nil
}

func (t *Tree) removeChildren(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return sandbox.Wrap("remove", t.sb.StripRootPath(dir, true), nil, err)
	}

	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		// Links are removed, never followed.
		if entry.IsDir() {
			if err := t.removeChildren(child); err != nil {
				return err
			}
		}
		if err := t.remove(child); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return sandbox.Wrap("remove", t.sb.StripRootPath(child, true), nil, err)
		}
	}
	return nil
}
