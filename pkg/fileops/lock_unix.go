//go:build unix

package fileops

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock places an advisory flock(2) lock on f. With nonBlocking set the call
// returns ErrWouldBlock instead of waiting for a conflicting holder.
func Lock(f *os.File, mode LockMode, nonBlocking bool) error {
	how := unix.LOCK_SH
	if mode == LockExclusive {
		how = unix.LOCK_EX
	}
	if nonBlocking {
		how |= unix.LOCK_NB
	}

	for {
		err := unix.Flock(int(f.Fd()), how)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EWOULDBLOCK):
			return ErrWouldBlock
		default:
			return fmt.Errorf("flock %s: %w", f.Name(), err)
		}
	}
}

// Unlock releases any advisory lock held on f.
func Unlock(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("unlock %s: %w", f.Name(), err)
	}
	return nil
}
