//go:build !unix

package fileops

import "os"

func Lock(f *os.File, mode LockMode, nonBlocking bool) error {
	return ErrLockUnsupported
}

func Unlock(f *os.File) error {
	return ErrLockUnsupported
}
