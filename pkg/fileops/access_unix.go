//go:build unix

package fileops

import "golang.org/x/sys/unix"

// IsWritable reports whether the real user may write to path.
func IsWritable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}

// IsReadable reports whether the real user may read path.
func IsReadable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}
