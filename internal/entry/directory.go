package entry

import (
	"os"

	"disc/internal/logging"
	"disc/internal/sandbox"
	"disc/pkg/fileops"
)

// Directory is a handle on a directory inside the sandbox.
type Directory struct {
	Entry
}

// List returns the display paths of entries matching pattern, descending
// into subdirectories when recursive is set. See treeops.Tree.ListTree.
func (d *Directory) List(pattern string, recursive bool) ([]string, error) {
	return d.disk.tree.ListTree(d.path, pattern, recursive)
}

// ListAll is List with recursion.
func (d *Directory) ListAll(pattern string) ([]string, error) {
	return d.List(pattern, true)
}

// Create makes the directory and any missing parents. A zero mode uses the
// sandbox default. Creating an existing directory is not an error.
func (d *Directory) Create(mode os.FileMode) error {
	if mode == 0 {
		mode = d.disk.sb.DirMode()
	}
	if err := fileops.EnsureDirectoryExists(d.path.Abs, mode); err != nil {
		if info, statErr := os.Stat(d.path.Abs); statErr == nil && !info.IsDir() {
			return sandbox.Wrap("mkdir", d.display(), sandbox.ErrAlreadyExists, err)
		}
		return sandbox.Wrap("mkdir", d.display(), nil, err)
	}
	logging.Debug("Created directory", "path", d.display())
	return nil
}

// Remove deletes the directory and everything in it. Unless quiet is set
// the directory has to exist.
func (d *Directory) Remove(quiet bool) error {
	return d.remove(true, quiet)
}

// RemoveContents empties the directory but keeps it. Unless quiet is set the
// directory has to exist.
func (d *Directory) RemoveContents(quiet bool) error {
	return d.remove(false, quiet)
}

func (d *Directory) remove(removeDir, quiet bool) error {
	if !quiet {
		if err := d.required(); err != nil {
			return err
		}
	}
	if info, err := os.Stat(d.path.Abs); err != nil || !info.IsDir() {
		return nil
	}
	return d.disk.tree.RemoveTree(d.path, removeDir)
}

// Copy copies the directory tree to the logical path dest and returns a
// handle on the copy. The copy is best-effort: on a *treeops.CopyError the
// returned handle points at the partial copy.
func (d *Directory) Copy(dest string) (*Directory, error) {
	to, err := d.disk.tree.CopyTree(d.path, dest)
	if err != nil && to.Abs == "" {
		return nil, err
	}
	return d.disk.newDirectory(to), err
}
