// Package fileops provides the low-level filesystem primitives that the disc
// sandbox is built on.
//
// Nothing in this package knows about a sandbox root: callers are expected to
// validate and resolve paths first and hand absolute paths in. The package
// covers four concerns:
//
// # Directory Creation
//
// EnsureDirectoryExists() and EnsureParentDirectory() behave like `mkdir -p`.
// When a permissive mode is requested the process umask is cleared for the
// duration of the call and restored immediately afterwards, even on failure:
//
//	if err := fileops.EnsureParentDirectory("/srv/app/out/new.json", 0o777); err != nil {
//	    return err
//	}
//
// # Exclusive Copies
//
// CopyFileExclusive() copies a single file to a destination that must not
// exist yet. The destination appears fully written or not at all.
//
// # Advisory Locks
//
// Lock() and Unlock() wrap flock(2). Locks are cooperative: a process that
// never asks for the lock is not stopped from writing.
//
// # Containment
//
// CanonicalPath() resolves every symbolic link in the existing part of a path
// and IsWithin() reports whether a canonical path stays under a base
// directory. Use them together so a link pointing outside the base cannot
// slip past a purely lexical check:
//
//	canonical, err := fileops.CanonicalPath(candidate)
//	if err != nil {
//	    return err
//	}
//	if !fileops.IsWithin(root, canonical) {
//	    return fmt.Errorf("path escapes %s", root)
//	}
package fileops
