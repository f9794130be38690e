package entry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"disc/internal/logging"
	"disc/internal/sandbox"
	"disc/pkg/fileops"
)

var (
	// ErrInvalidMode is returned by Open for an unknown mode string.
	ErrInvalidMode = errors.New("invalid open mode")
	// ErrInvalidCount is returned by Characters for a negative count.
	ErrInvalidCount = errors.New("invalid byte count")
)

// Open modes, as accepted by File.Open.
var openModes = map[string]int{
	"r":  os.O_RDONLY,
	"r+": os.O_RDWR,
	"w":  os.O_WRONLY | os.O_CREATE | os.O_TRUNC,
	"w+": os.O_RDWR | os.O_CREATE | os.O_TRUNC,
	"a":  os.O_WRONLY | os.O_CREATE | os.O_APPEND,
	"a+": os.O_RDWR | os.O_CREATE | os.O_APPEND,
	"x":  os.O_WRONLY | os.O_CREATE | os.O_EXCL,
	"x+": os.O_RDWR | os.O_CREATE | os.O_EXCL,
	"c":  os.O_WRONLY | os.O_CREATE,
	"c+": os.O_RDWR | os.O_CREATE,
}

// DefaultLineEnding terminates lines written by WriteLine.
const DefaultLineEnding = "\n"

// File is a handle on a regular file inside the sandbox.
type File struct {
	Entry
	stream *fileStream
}

// Open opens a stream on the file, replacing any stream already open. Modes
// follow fopen: "r" and "r+" need an existing file, the others create
// missing parent directories.
func (f *File) Open(mode string) error {
	flags, ok := openModes[mode]
	if !ok {
		return sandbox.Wrap("open", f.display(), ErrInvalidMode, errors.New("mode "+mode))
	}

	if mode == "r" || mode == "r+" {
		if err := f.required(); err != nil {
			return err
		}
	} else if err := f.disk.sb.EnsureParent(f.path); err != nil {
		return err
	}

	if f.stream != nil {
		f.stream.Close()
		f.stream = nil
	}

	fh, err := os.OpenFile(f.path.Abs, flags, f.disk.fileMode)
	if err != nil {
		return sandbox.Wrap("open", f.display(), nil, err)
	}
	f.stream = newFileStream(fh)
	return nil
}

// Create opens the file truncated for writing.
func (f *File) Create() error { return f.Open("w") }

// Append opens the file for writing at its end.
func (f *File) Append() error { return f.Open("a") }

// Close closes the open stream.
func (f *File) Close() error {
	s, err := f.openStream("close")
	if err != nil {
		return err
	}
	f.stream = nil
	if err := s.Close(); err != nil {
		return sandbox.Wrap("close", f.display(), nil, err)
	}
	return nil
}

// IsOpen reports whether a stream is open.
func (f *File) IsOpen() bool { return f.stream != nil }

// Stream returns the open stream.
func (f *File) Stream() (Stream, error) {
	return f.openStream("stream")
}

func (f *File) openStream(op string) (*fileStream, error) {
	if f.stream == nil {
		return nil, sandbox.Wrap(op, f.display(), sandbox.ErrNoOpenStream, nil)
	}
	return f.stream, nil
}

func (f *File) streamErr(op string, err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	return sandbox.Wrap(op, f.display(), nil, err)
}

// Write writes p to the open stream.
func (f *File) Write(p []byte) (int, error) {
	s, err := f.openStream("write")
	if err != nil {
		return 0, err
	}
	n, err := s.Write(p)
	return n, f.streamErr("write", err)
}

// WriteString writes str to the open stream.
func (f *File) WriteString(str string) (int, error) {
	return f.Write([]byte(str))
}

// WriteLine writes str followed by ending, or DefaultLineEnding when ending
// is empty.
func (f *File) WriteLine(str, ending string) (int, error) {
	if ending == "" {
		ending = DefaultLineEnding
	}
	return f.WriteString(str + ending)
}

// Character reads a single byte. It returns io.EOF at end of file.
func (f *File) Character() (string, error) {
	return f.Characters(1)
}

// Characters reads up to n bytes; fewer are returned only at end of file,
// and io.EOF once nothing is left.
func (f *File) Characters(n int) (string, error) {
	if n < 0 {
		return "", sandbox.Wrap("read", f.display(), ErrInvalidCount, fmt.Errorf("count %d", n))
	}
	s, err := f.openStream("read")
	if err != nil {
		return "", err
	}
	b, err := s.readN(n)
	return string(b), f.streamErr("read", err)
}

// Line reads the next line, including its line ending. It returns io.EOF
// once nothing is left.
func (f *File) Line() (string, error) {
	s, err := f.openStream("read")
	if err != nil {
		return "", err
	}
	line, err := s.readLine()
	return line, f.streamErr("read", err)
}

// Lock places an advisory lock on the open stream.
func (f *File) Lock(mode fileops.LockMode, nonBlocking bool) error {
	s, err := f.openStream("lock")
	if err != nil {
		return err
	}
	if err := s.Lock(mode, nonBlocking); err != nil {
		return sandbox.Wrap("lock", f.display(), sandbox.ErrPermission, err)
	}
	return nil
}

// Unlock releases the advisory lock on the open stream.
func (f *File) Unlock() error {
	s, err := f.openStream("unlock")
	if err != nil {
		return err
	}
	return f.streamErr("unlock", s.Unlock())
}

// Position returns the current offset of the open stream.
func (f *File) Position() (int64, error) {
	s, err := f.openStream("position")
	if err != nil {
		return 0, err
	}
	pos, err := s.position()
	return pos, f.streamErr("position", err)
}

// SetPosition moves the open stream to the absolute offset.
func (f *File) SetPosition(offset int64) (int64, error) {
	s, err := f.openStream("seek")
	if err != nil {
		return 0, err
	}
	pos, err := s.Seek(offset, io.SeekStart)
	return pos, f.streamErr("seek", err)
}

// Flush commits written data to stable storage.
func (f *File) Flush() error {
	s, err := f.openStream("flush")
	if err != nil {
		return err
	}
	return f.streamErr("flush", s.Flush())
}

// Get returns the whole content of the file.
func (f *File) Get() ([]byte, error) {
	if err := f.required(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.path.Abs)
	if err != nil {
		return nil, sandbox.Wrap("read", f.display(), nil, err)
	}
	return b, nil
}

// Lines returns the file's lines without their line endings.
func (f *File) Lines() ([]string, error) {
	if err := f.required(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.path.Abs)
	if err != nil {
		return nil, sandbox.Wrap("read", f.display(), nil, err)
	}
	defer fh.Close()

	var lines []string
	r := bufio.NewReader(fh)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, sandbox.Wrap("read", f.display(), nil, err)
		}
	}
}

// WriteTo copies the whole file to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	if err := f.required(); err != nil {
		return 0, err
	}
	fh, err := os.Open(f.path.Abs)
	if err != nil {
		return 0, sandbox.Wrap("read", f.display(), nil, err)
	}
	defer fh.Close()
	return io.Copy(w, fh)
}

// Save atomically replaces the file's content and returns the number of
// bytes written.
func (f *File) Save(content []byte) (int, error) {
	return f.disk.writer.Save(f.path, content)
}

// Remove closes any open stream and deletes the file. It reports false
// without error when there was nothing to delete.
func (f *File) Remove() (bool, error) {
	if f.stream != nil {
		f.stream.Close()
		f.stream = nil
	}
	if _, err := os.Lstat(f.path.Abs); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := os.Remove(f.path.Abs); err != nil {
		return false, sandbox.Wrap("remove", f.display(), nil, err)
	}
	logging.Debug("Removed file", "path", f.display())
	return true, nil
}

// Copy copies the file to the logical path dest and returns a handle on
// the copy. dest must not exist; its missing parent directories are
// created.
func (f *File) Copy(dest string) (*File, error) {
	if err := f.required(); err != nil {
		return nil, err
	}
	to, err := f.disk.sb.Resolve(dest, sandbox.KindAny)
	if err != nil {
		return nil, err
	}
	toDisplay := f.disk.sb.Display(to)

	if _, err := os.Lstat(to.Abs); err == nil {
		return nil, sandbox.Wrap("copy", toDisplay, sandbox.ErrAlreadyExists, nil)
	}
	if err := f.disk.sb.EnsureParent(to); err != nil {
		return nil, err
	}
	if _, err := fileops.CopyFileExclusive(f.path.Abs, to.Abs); err != nil {
		if errors.Is(err, fileops.ErrDestinationExists) {
			return nil, sandbox.Wrap("copy", toDisplay, sandbox.ErrAlreadyExists, nil)
		}
		return nil, sandbox.Wrap("copy", toDisplay, nil, err)
	}

	logging.Debug("Copied file", "from", f.display(), "to", toDisplay)
	return f.disk.newFile(to), nil
}
