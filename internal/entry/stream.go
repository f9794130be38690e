package entry

import (
	"bufio"
	"errors"
	"io"
	"os"

	"disc/pkg/fileops"
)

// Stream is an open file. Reads are buffered; writes and seeks keep the
// file offset consistent with what has been read.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
	Lock(mode fileops.LockMode, nonBlocking bool) error
	Unlock() error
	Flush() error
	Close() error
}

type fileStream struct {
	f *os.File
	r *bufio.Reader
}

func newFileStream(f *os.File) *fileStream {
	return &fileStream{f: f, r: bufio.NewReader(f)}
}

func (s *fileStream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *fileStream) Write(p []byte) (int, error) {
	if err := s.rewindBuffer(); err != nil {
		return 0, err
	}
	return s.f.Write(p)
}

// rewindBuffer moves the file offset back over read-ahead data that has
// not been consumed and drops it.
func (s *fileStream) rewindBuffer() error {
	if n := s.r.Buffered(); n > 0 {
		if _, err := s.f.Seek(int64(-n), io.SeekCurrent); err != nil {
			return err
		}
	}
	s.r.Reset(s.f)
	return nil
}

func (s *fileStream) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekCurrent {
		offset -= int64(s.r.Buffered())
	}
	s.r.Reset(s.f)
	return s.f.Seek(offset, whence)
}

func (s *fileStream) position() (int64, error) {
	pos, err := s.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	return pos - int64(s.r.Buffered()), nil
}

// readLine returns the next line including its terminator. The last line
// of a file may have none.
func (s *fileStream) readLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		return line, nil
	}
	return line, err
}

// readN reads up to n bytes, returning fewer only at end of file.
func (s *fileStream) readN(n int) ([]byte, error) {
	buf := make([]byte, n)
	m, err := io.ReadFull(s.r, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return buf[:m], nil
	}
	return buf[:m], err
}

func (s *fileStream) Lock(mode fileops.LockMode, nonBlocking bool) error {
	return fileops.Lock(s.f, mode, nonBlocking)
}

func (s *fileStream) Unlock() error {
	return fileops.Unlock(s.f)
}

func (s *fileStream) Flush() error {
	return s.f.Sync()
}

func (s *fileStream) Close() error {
	return s.f.Close()
}
