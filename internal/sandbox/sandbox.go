// Package sandbox confines filesystem paths to a single root directory.
//
// Every caller-supplied path is joined to the root, canonicalised with all
// symbolic links in its existing portion resolved, and rejected if the result
// lies outside the root. Only the resulting ResolvedPath is used for I/O by
// the rest of the module.
package sandbox

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"disc/internal/logging"
	"disc/pkg/fileops"
)

// ResolvedPath is an absolute, canonical path inside a sandbox root.
type ResolvedPath struct {
	Abs      string
	Required Kind
}

func (p ResolvedPath) String() string { return p.Abs }

// Sandbox holds the root all of its paths are confined to. The zero value has
// no root and fails every resolution with ErrConfig.
type Sandbox struct {
	mu      sync.RWMutex
	root    string
	dirMode os.FileMode
}

// New returns a sandbox rooted at root. See SetRoot for the requirements on
// root.
func New(root string) (*Sandbox, error) {
	s := &Sandbox{dirMode: fileops.DefaultDirMode}
	if err := s.SetRoot(root); err != nil {
		return nil, err
	}
	return s, nil
}

// SetRoot canonicalises root and installs it as the sandbox root. The root
// must be an existing directory.
func (s *Sandbox) SetRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return newPathError("setroot", root, KindDirectory, ErrConfig, errors.New("empty root"))
	}

	canonical, err := fileops.CanonicalPath(fileops.ExpandPath(root))
	if err != nil {
		return newPathError("setroot", root, KindDirectory, ErrConfig, err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return newPathError("setroot", root, KindDirectory, ErrConfig, err)
	}
	if !info.IsDir() {
		return newPathError("setroot", root, KindDirectory, ErrConfig, errors.New("not a directory"))
	}

	s.mu.Lock()
	s.root = canonical
	s.mu.Unlock()

	logging.Debug("Sandbox root set", "root", canonical)
	return nil
}

// Root returns the canonical root, or "" if none is set.
func (s *Sandbox) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// SetDirMode changes the mode used for directories created by
// AutoGenMissingDirectory.
func (s *Sandbox) SetDirMode(mode os.FileMode) {
	s.mu.Lock()
	s.dirMode = mode
	s.mu.Unlock()
}

// DirMode returns the mode used for directories the sandbox creates.
func (s *Sandbox) DirMode() os.FileMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dirMode == 0 {
		return fileops.DefaultDirMode
	}
	return s.dirMode
}

// Resolve turns a logical path into a ResolvedPath inside the root.
//
// Relative paths and paths starting with a separator are both taken relative
// to the root. An absolute path that already lies under the root is used as
// is. The containment check runs on the canonical path, after symbolic links
// have been followed. With required set to KindFile or KindDirectory the
// entry must also exist with that kind.
func (s *Sandbox) Resolve(logical string, required Kind) (ResolvedPath, error) {
	root := s.Root()
	if root == "" {
		return ResolvedPath{}, newPathError("resolve", logical, required, ErrConfig, nil)
	}

	candidate := filepath.Join(root, logical)
	if filepath.IsAbs(logical) && fileops.IsWithin(root, filepath.Clean(logical)) {
		candidate = filepath.Clean(logical)
	}

	canonical, err := fileops.CanonicalPath(candidate)
	if err != nil {
		return ResolvedPath{}, newPathError("resolve", logical, required, classify(err, ErrNotFound), OSCause(err))
	}
	if !fileops.IsWithin(root, canonical) {
		logging.Debug("Rejected path outside sandbox", "path", logical, "resolved", canonical)
		return ResolvedPath{}, newPathError("resolve", logical, required, ErrPathEscapesRoot, nil)
	}

	resolved := ResolvedPath{Abs: canonical, Required: required}
	if required != KindAny {
		if err := s.ExistsRequired(resolved, required); err != nil {
			return ResolvedPath{}, err
		}
	}
	return resolved, nil
}

// ResolveString is Resolve returning the plain path, optionally stripped of
// the root prefix.
func (s *Sandbox) ResolveString(logical string, strip bool, required Kind) (string, error) {
	p, err := s.Resolve(logical, required)
	if err != nil {
		return "", err
	}
	return s.StripRootPath(p.Abs, strip), nil
}

// StripRootPath removes the root prefix from path when strict is true and
// path lies under the root, returning the remainder with a leading separator.
// Any other input is returned unchanged. No filesystem access is made.
func (s *Sandbox) StripRootPath(path string, strict bool) string {
	return StripRoot(s.Root(), path, strict)
}

// StripRoot is StripRootPath for an explicit root.
func StripRoot(root, path string, strict bool) string {
	if !strict || root == "" {
		return path
	}
	sep := string(filepath.Separator)
	if path == root {
		return sep
	}
	prefix := strings.TrimSuffix(root, sep) + sep
	if !strings.HasPrefix(path, prefix) {
		return path
	}
	return sep + strings.TrimPrefix(path, prefix)
}

// Display returns p as shown to callers, with the root stripped.
func (s *Sandbox) Display(p ResolvedPath) string {
	return s.StripRootPath(p.Abs, true)
}

// AutoGenMissingDirectory creates every missing ancestor directory of the
// logical path target. The final segment is not created. Calling it again
// for the same target is a no-op.
func (s *Sandbox) AutoGenMissingDirectory(target string) error {
	resolved, err := s.Resolve(target, KindAny)
	if err != nil {
		return err
	}
	return s.EnsureParent(resolved)
}

// EnsureParent creates the missing ancestor directories of an already
// resolved path.
func (s *Sandbox) EnsureParent(p ResolvedPath) error {
	parent := filepath.Dir(p.Abs)
	if info, err := os.Stat(parent); err == nil && info.IsDir() {
		return nil
	}
	if err := fileops.EnsureParentDirectory(p.Abs, s.DirMode()); err != nil {
		return newPathError("mkdir", s.StripRootPath(parent, true), KindDirectory, classify(err, ErrWrite), OSCause(err))
	}
	logging.Debug("Created missing directories", "path", s.StripRootPath(parent, true))
	return nil
}

// ExistsRequired fails with ErrNotFound unless p exists as an entry of kind.
func (s *Sandbox) ExistsRequired(p ResolvedPath, kind Kind) error {
	info, err := os.Stat(p.Abs)
	if err != nil {
		sentinel := ErrNotFound
		if errors.Is(err, fs.ErrPermission) {
			sentinel = ErrPermission
		}
		return newPathError("stat", s.StripRootPath(p.Abs, true), kind, sentinel, OSCause(err))
	}
	if !kind.Matches(info) {
		return newPathError("stat", s.StripRootPath(p.Abs, true), kind, ErrNotFound, nil)
	}
	return nil
}

// Exists reports whether logical resolves inside the root and names an
// existing entry.
func (s *Sandbox) Exists(logical string) bool {
	p, err := s.Resolve(logical, KindAny)
	if err != nil {
		return false
	}
	_, err = os.Stat(p.Abs)
	return err == nil
}

// OSCause strips the paths from an *fs.PathError or *os.LinkError and
// returns the bare OS error, so the root does not leak into messages built
// from it. Other errors are returned unchanged.
func OSCause(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Err
	}
	return err
}

func classify(err, fallback error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrExist):
		return ErrAlreadyExists
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	default:
		return fallback
	}
}
