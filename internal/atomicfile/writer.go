// Package atomicfile replaces file contents all-or-nothing.
//
// Content is written to a temporary file in the target's directory and then
// renamed over the target. Readers of the target see either the old content
// or the complete new content, never a partial write.
package atomicfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"disc/internal/logging"
	"disc/internal/sandbox"
	"disc/pkg/fileops"
)

// TempPrefix starts the name of every temporary file the writer creates.
const TempPrefix = "afpc_"

// DefaultFileMode is the mode of files created by Save when the target does
// not exist yet.
const DefaultFileMode os.FileMode = 0o644

// Stage identifies the step of a save that failed.
type Stage int

const (
	// StageTemp: the temporary file could not be created. Nothing changed.
	StageTemp Stage = iota
	// StageWrite: writing or syncing the temporary file failed. The target
	// is untouched; the temporary file is left in place.
	StageWrite
	// StageRename: the content is complete in the temporary file but could
	// not be moved over the target.
	StageRename
)

func (s Stage) String() string {
	switch s {
	case StageTemp:
		return "create temp"
	case StageWrite:
		return "write"
	case StageRename:
		return "rename"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// WriteError describes a failed save. TempPath names the orphaned temporary
// file as a display path, or is empty when none was created.
type WriteError struct {
	Stage    Stage
	Path     string
	TempPath string
	Err      error
}

func (e *WriteError) Error() string {
	msg := "save " + e.Path + ": " + e.Stage.String() + " failed"
	if e.TempPath != "" {
		msg += " (temporary file " + e.TempPath + " left behind)"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *WriteError) Unwrap() []error {
	return []error{sandbox.ErrWrite, e.Err}
}

// Writer performs atomic saves inside one sandbox.
type Writer struct {
	sb       *sandbox.Sandbox
	fileMode os.FileMode

	// write and rename are swapped out by tests to inject failures.
	write  func(f *os.File, content []byte) (int, error)
	rename func(oldpath, newpath string) error
}

// New returns a writer for files inside sb.
func New(sb *sandbox.Sandbox) *Writer {
	return &Writer{
		sb:       sb,
		fileMode: DefaultFileMode,
		write:    writeAll,
		rename:   os.Rename,
	}
}

// SetFileMode changes the mode of newly created targets. Existing targets
// keep their mode.
func (w *Writer) SetFileMode(mode os.FileMode) {
	w.fileMode = mode
}

// Save replaces the content of target with content and returns the number of
// bytes written. Missing parent directories are created first.
func (w *Writer) Save(target sandbox.ResolvedPath, content []byte) (int, error) {
	start := time.Now()
	display := w.sb.Display(target)

	if err := w.sb.EnsureParent(target); err != nil {
		return 0, err
	}

	dir := filepath.Dir(target.Abs)
	if err := fileops.ValidateDirectoryWritable(dir); err != nil {
		return 0, sandbox.Wrap("save", w.sb.StripRootPath(dir, true), sandbox.ErrPermission, err)
	}

	mode := w.fileMode
	if info, err := os.Stat(target.Abs); err == nil {
		if info.IsDir() {
			return 0, sandbox.Wrap("save", display, sandbox.ErrAlreadyExists, errors.New("target is a directory"))
		}
		mode = info.Mode().Perm()
	}

	tempPath := filepath.Join(dir, TempPrefix+uuid.NewString())
	tmpFile, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return 0, &WriteError{Stage: StageTemp, Path: display, Err: sandbox.OSCause(err)}
	}

	orphan := func(stage Stage, err error) (int, error) {
		logging.Warn("Save failed, temporary file left behind", "path", display, "temp", w.sb.StripRootPath(tempPath, true), "stage", stage.String())
		return 0, &WriteError{Stage: stage, Path: display, TempPath: w.sb.StripRootPath(tempPath, true), Err: sandbox.OSCause(err)}
	}

	if err := fileops.Lock(tmpFile, fileops.LockExclusive, false); err != nil && !errors.Is(err, fileops.ErrLockUnsupported) {
		tmpFile.Close()
		return orphan(StageWrite, err)
	}

	n, err := w.write(tmpFile, content)
	if err != nil {
		tmpFile.Close()
		return orphan(StageWrite, err)
	}
	// Creation mode is filtered by the umask; apply the intended mode.
	if err := tmpFile.Chmod(mode); err != nil {
		tmpFile.Close()
		return orphan(StageWrite, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return orphan(StageWrite, err)
	}
	if err := tmpFile.Close(); err != nil {
		return orphan(StageWrite, err)
	}

	if err := w.rename(tempPath, target.Abs); err != nil {
		return orphan(StageRename, err)
	}

	logging.Debug("Saved file", "path", display, "bytes", n)
	logging.LogPerformance("atomic save", start)
	return n, nil
}

func writeAll(f *os.File, content []byte) (int, error) {
	return f.Write(content)
}
