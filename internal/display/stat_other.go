//go:build !linux

package display

import "os"

// StatPath stats path without following a final symbolic link. Access and
// change times are not available here and mirror the modification time.
func StatPath(path string) (Stat, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Stat{}, err
	}
	return Stat{
		Mode:  UnixMode(info.Mode()),
		Size:  info.Size(),
		Uid:   -1,
		Gid:   -1,
		Atime: info.ModTime(),
		Mtime: info.ModTime(),
		Ctime: info.ModTime(),
	}, nil
}
