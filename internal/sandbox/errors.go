package sandbox

import "errors"

// Sentinel errors for every failure kind a sandbox operation can report.
// Callers test for them with errors.Is; the concrete error usually carries
// more context (see PathError).
var (
	ErrConfig          = errors.New("sandbox root is not configured")
	ErrPathEscapesRoot = errors.New("path escapes sandbox root")
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrPermission      = errors.New("permission denied")
	ErrWrite           = errors.New("write failed")
	ErrNoOpenStream    = errors.New("no open stream")
	ErrInvalidName     = errors.New("invalid name")
)

// PathError records a failed operation on a sandboxed path.
//
// Kind is the kind of entry the operation expected, KindAny when it had no
// expectation. Err is the sentinel for the failure and Cause the underlying
// OS error, if there was one; both are reachable through errors.Is and
// errors.As.
type PathError struct {
	Op    string
	Path  string
	Kind  Kind
	Err   error
	Cause error
}

func (e *PathError) Error() string {
	msg := e.Op + " " + e.Path + ": " + e.Err.Error()
	if e.Kind != KindAny {
		msg += " (expected " + e.Kind.String() + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *PathError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func newPathError(op, path string, kind Kind, sentinel, cause error) *PathError {
	return &PathError{Op: op, Path: path, Kind: kind, Err: sentinel, Cause: cause}
}

// Wrap reports cause as a failure of op on the display path and classifies
// it under sentinel. A nil sentinel is derived from cause.
func Wrap(op, path string, sentinel, cause error) error {
	if sentinel == nil {
		sentinel = classify(cause, ErrWrite)
	}
	return newPathError(op, path, KindAny, sentinel, OSCause(cause))
}
