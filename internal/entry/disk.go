// Package entry provides file and directory handles confined to a sandbox.
//
// A handle is a small Entry value (resolved path plus kind) composed with the
// sandbox services: path resolution, atomic saves and tree operations. Move
// and Rename update the handle in place; Copy returns a new handle.
package entry

import (
	"os"

	"disc/internal/atomicfile"
	"disc/internal/sandbox"
	"disc/internal/treeops"
)

// Disk hands out handles for paths inside one sandbox.
type Disk struct {
	sb       *sandbox.Sandbox
	writer   *atomicfile.Writer
	tree     *treeops.Tree
	fileMode os.FileMode
}

// New returns a Disk over sb.
func New(sb *sandbox.Sandbox) *Disk {
	return &Disk{
		sb:       sb,
		writer:   atomicfile.New(sb),
		tree:     treeops.New(sb),
		fileMode: atomicfile.DefaultFileMode,
	}
}

// Sandbox returns the sandbox the disk resolves paths with.
func (d *Disk) Sandbox() *sandbox.Sandbox { return d.sb }

// SetFileMode sets the mode of files created by Open and Save.
func (d *Disk) SetFileMode(mode os.FileMode) {
	d.fileMode = mode
	d.writer.SetFileMode(mode)
}

// File returns a handle for the file at logical. The file does not have to
// exist.
func (d *Disk) File(logical string) (*File, error) {
	p, err := d.sb.Resolve(logical, sandbox.KindAny)
	if err != nil {
		return nil, err
	}
	return d.newFile(p), nil
}

// Directory returns a handle for the directory at logical. The directory
// does not have to exist.
func (d *Disk) Directory(logical string) (*Directory, error) {
	p, err := d.sb.Resolve(logical, sandbox.KindAny)
	if err != nil {
		return nil, err
	}
	return d.newDirectory(p), nil
}

func (d *Disk) newFile(p sandbox.ResolvedPath) *File {
	return &File{Entry: Entry{disk: d, path: p, kind: sandbox.KindFile}}
}

func (d *Disk) newDirectory(p sandbox.ResolvedPath) *Directory {
	return &Directory{Entry: Entry{disk: d, path: p, kind: sandbox.KindDirectory}}
}
