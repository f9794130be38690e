package fileops

import "errors"

// LockMode selects between shared and exclusive advisory locks.
type LockMode int

const (
	LockShared LockMode = iota
	LockExclusive
)

func (m LockMode) String() string {
	if m == LockExclusive {
		return "exclusive"
	}
	return "shared"
}

var (
	// ErrWouldBlock is returned by a non-blocking Lock when another holder
	// already has a conflicting lock.
	ErrWouldBlock = errors.New("lock is held by another process")

	// ErrLockUnsupported is returned on platforms without flock(2).
	ErrLockUnsupported = errors.New("advisory locks are not supported on this platform")
)
