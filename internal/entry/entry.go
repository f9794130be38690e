package entry

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"disc/internal/display"
	"disc/internal/logging"
	"disc/internal/sandbox"
	"disc/internal/treeops"
	"disc/pkg/fileops"
)

// Entry is the part shared by file and directory handles: where the entry
// lives and what kind it is expected to be.
type Entry struct {
	disk *Disk
	path sandbox.ResolvedPath
	kind sandbox.Kind
}

// Kind returns the kind of entry the handle expects.
func (e *Entry) Kind() sandbox.Kind { return e.kind }

// Resolved returns the handle's current resolved path.
func (e *Entry) Resolved() sandbox.ResolvedPath { return e.path }

// Path returns the absolute path, or the display path when strip is set.
func (e *Entry) Path(strip bool) string {
	return e.disk.sb.StripRootPath(e.path.Abs, strip)
}

func (e *Entry) display() string {
	return e.disk.sb.Display(e.path)
}

// Name returns the base name, with suffix removed when it is given and
// matches.
func (e *Entry) Name(suffix string) string {
	base := filepath.Base(e.path.Abs)
	if suffix != "" && suffix != base {
		if trimmed, ok := strings.CutSuffix(base, suffix); ok {
			return trimmed
		}
	}
	return base
}

// DirectoryName returns the display path of the parent directory.
func (e *Entry) DirectoryName() string {
	if e.path.Abs == e.disk.sb.Root() {
		return string(filepath.Separator)
	}
	return e.disk.sb.StripRootPath(filepath.Dir(e.path.Abs), true)
}

// Exists reports whether the entry exists. With inside set it reports
// whether that path exists below the entry instead.
func (e *Entry) Exists(inside string) bool {
	if inside == "" {
		_, err := os.Lstat(e.path.Abs)
		return err == nil
	}
	return e.disk.sb.Exists(filepath.Join(e.display(), inside))
}

func (e *Entry) required() error {
	return e.disk.sb.ExistsRequired(e.path, e.kind)
}

func (e *Entry) stat() (display.Stat, error) {
	if err := e.required(); err != nil {
		return display.Stat{}, err
	}
	st, err := display.StatPath(e.path.Abs)
	if err != nil {
		return display.Stat{}, sandbox.Wrap("stat", e.display(), nil, err)
	}
	return st, nil
}

// Size returns the size in bytes.
func (e *Entry) Size() (int64, error) {
	st, err := e.stat()
	return st.Size, err
}

// AccessTime returns the last access time.
func (e *Entry) AccessTime() (time.Time, error) {
	st, err := e.stat()
	return st.Atime, err
}

// ModificationTime returns the last modification time.
func (e *Entry) ModificationTime() (time.Time, error) {
	st, err := e.stat()
	return st.Mtime, err
}

// ChangeTime returns the last status change time.
func (e *Entry) ChangeTime() (time.Time, error) {
	st, err := e.stat()
	return st.Ctime, err
}

// Permissions renders the mode with display.FormatPermissions.
func (e *Entry) Permissions(option int) (string, error) {
	st, err := e.stat()
	if err != nil {
		return "", err
	}
	return display.FormatPermissions(st.Mode, option), nil
}

// ChangePermissions sets the permission bits.
func (e *Entry) ChangePermissions(mode os.FileMode) error {
	if err := e.required(); err != nil {
		return err
	}
	if err := os.Chmod(e.path.Abs, mode); err != nil {
		return sandbox.Wrap("chmod", e.display(), nil, err)
	}
	return nil
}

// Owner returns the owning user id.
func (e *Entry) Owner() (int, error) {
	st, err := e.stat()
	return st.Uid, err
}

// OwnerName returns the owning user's name.
func (e *Entry) OwnerName() (string, error) {
	st, err := e.stat()
	if err != nil {
		return "", err
	}
	return display.OwnerName(st.Uid), nil
}

// Group returns the owning group id.
func (e *Entry) Group() (int, error) {
	st, err := e.stat()
	return st.Gid, err
}

// GroupName returns the owning group's name.
func (e *Entry) GroupName() (string, error) {
	st, err := e.stat()
	if err != nil {
		return "", err
	}
	return display.GroupName(st.Gid), nil
}

// ChangeOwner sets the owning user and group. Pass -1 to keep either.
func (e *Entry) ChangeOwner(uid, gid int) error {
	if err := e.required(); err != nil {
		return err
	}
	if err := os.Lchown(e.path.Abs, uid, gid); err != nil {
		return sandbox.Wrap("chown", e.display(), nil, err)
	}
	return nil
}

// Type names the kind of entry on disk, such as "file", "dir" or "link".
func (e *Entry) Type() (string, error) {
	st, err := e.stat()
	if err != nil {
		return "", err
	}
	return display.TypeName(st.Mode), nil
}

// Info collects the full metadata record. layout formats the *Display time
// fields; empty selects display.DefaultTimeLayout.
func (e *Entry) Info(layout string) (display.Info, error) {
	if err := e.required(); err != nil {
		return display.Info{}, err
	}
	info, err := display.NewInfo(e.path.Abs, e.display(), e.DirectoryName(), e.disk.sb.Root(), layout)
	if err != nil {
		return display.Info{}, sandbox.Wrap("stat", e.display(), nil, err)
	}
	return info, nil
}

// Touch sets the access and modification times to now. A missing file is
// created empty; a directory must already exist.
func (e *Entry) Touch() error {
	now := time.Now()
	if e.kind == sandbox.KindDirectory {
		if err := e.required(); err != nil {
			return err
		}
	} else if _, err := os.Stat(e.path.Abs); errors.Is(err, fs.ErrNotExist) {
		if err := e.disk.sb.EnsureParent(e.path); err != nil {
			return err
		}
		f, err := os.OpenFile(e.path.Abs, os.O_WRONLY|os.O_CREATE, e.disk.fileMode)
		if err != nil {
			return sandbox.Wrap("touch", e.display(), nil, err)
		}
		return f.Close()
	}
	if err := os.Chtimes(e.path.Abs, now, now); err != nil {
		return sandbox.Wrap("touch", e.display(), nil, err)
	}
	return nil
}

// Move relocates the entry to the logical path dest and points the handle
// at it. dest must not exist; its missing parent directories are created.
// The sandbox root cannot be moved, and a directory cannot be moved into
// its own subtree.
func (e *Entry) Move(dest string) error {
	if err := e.required(); err != nil {
		return err
	}
	if e.path.Abs == e.disk.sb.Root() {
		return sandbox.Wrap("move", e.display(), sandbox.ErrPermission, errors.New("refusing to move sandbox root"))
	}
	to, err := e.disk.sb.Resolve(dest, sandbox.KindAny)
	if err != nil {
		return err
	}
	toDisplay := e.disk.sb.Display(to)

	if _, err := os.Lstat(to.Abs); err == nil {
		return sandbox.Wrap("move", toDisplay, sandbox.ErrAlreadyExists, nil)
	}
	if fileops.IsWithin(e.path.Abs, to.Abs) {
		return sandbox.Wrap("move", toDisplay, treeops.ErrDestinationInsideSource, nil)
	}
	if err := e.disk.sb.EnsureParent(to); err != nil {
		return err
	}
	if err := os.Rename(e.path.Abs, to.Abs); err != nil {
		return sandbox.Wrap("move", toDisplay, nil, err)
	}

	logging.Debug("Moved entry", "from", e.display(), "to", toDisplay)
	e.path = sandbox.ResolvedPath{Abs: to.Abs, Required: e.path.Required}
	return nil
}

// Rename gives the entry a new base name in the same directory.
func (e *Entry) Rename(name string) error {
	if err := fileops.ValidateBaseName(name); err != nil {
		return sandbox.Wrap("rename", e.display(), sandbox.ErrInvalidName, err)
	}
	return e.Move(filepath.Join(filepath.Dir(e.path.Abs), name))
}
