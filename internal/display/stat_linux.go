//go:build linux

package display

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// StatPath stats path without following a final symbolic link.
func StatPath(path string) (Stat, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return Stat{}, &fs.PathError{Op: "lstat", Path: path, Err: err}
	}
	return Stat{
		Mode:  st.Mode,
		Size:  st.Size,
		Uid:   int(st.Uid),
		Gid:   int(st.Gid),
		Atime: time.Unix(st.Atim.Unix()),
		Mtime: time.Unix(st.Mtim.Unix()),
		Ctime: time.Unix(st.Ctim.Unix()),
	}, nil
}
