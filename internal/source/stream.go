package source

import (
	"bufio"
	"errors"
	"io"
	"os"

	"firestige.xyz/u2kit/internal/core"
)

// Stdin is the target name that selects standard input/output.
const Stdin = "-"

const streamBufferSize = 64 * 1024

func init() {
	Register(string(KindStream), func(target string) (Source, error) { return OpenStream(target) })
	RegisterSink(string(KindStream), func(target string, append bool) (Sink, error) {
		return CreateStream(target, append)
	})
}

// Stream reads a file (or stdin) through a buffer, tracking the logical
// position itself so that forward seeks also work on pipes.
type Stream struct {
	f      *os.File
	r      *bufio.Reader
	name   string
	pos    int64
	owned  bool
	closed bool
}

// OpenStream opens path for buffered reading; "-" reads standard input.
func OpenStream(path string) (*Stream, error) {
	if path == Stdin {
		return NewStream(os.Stdin, "stdin", false), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewIOError("open", path, err)
	}
	return NewStream(f, path, true), nil
}

// NewStream wraps an open file. The file is closed by Close only when owned.
func NewStream(f *os.File, name string, owned bool) *Stream {
	return &Stream{
		f:     f,
		r:     bufio.NewReaderSize(f, streamBufferSize),
		name:  name,
		owned: owned,
	}
}

func (s *Stream) Kind() Kind   { return KindStream }
func (s *Stream) Name() string { return s.name }

func (s *Stream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, core.ErrClosed
	}
	n, err := s.r.Read(p)
	s.pos += int64(n)
	if err != nil && err != io.EOF {
		return n, core.NewIOError("read", s.name, err)
	}
	return n, err
}

func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, core.ErrClosed
	}
	// short forward hops stay inside the buffer
	if whence == io.SeekCurrent && offset >= 0 && offset <= int64(s.r.Buffered()) {
		n, _ := s.r.Discard(int(offset))
		s.pos += int64(n)
		return s.pos, nil
	}

	var (
		abs int64
		err error
	)
	switch whence {
	case io.SeekCurrent:
		abs, err = s.f.Seek(s.pos+offset, io.SeekStart)
	default:
		abs, err = s.f.Seek(offset, whence)
	}
	if err == nil {
		s.r.Reset(s.f)
		s.pos = abs
		return abs, nil
	}
	if whence == io.SeekCurrent && offset > 0 {
		return s.discard(offset)
	}
	return s.pos, core.NewIOError("seek", s.name, err)
}

// discard moves forward on unseekable input by consuming bytes.
func (s *Stream) discard(offset int64) (int64, error) {
	for offset > 0 {
		chunk := offset
		if chunk > streamBufferSize {
			chunk = streamBufferSize
		}
		n, err := s.r.Discard(int(chunk))
		s.pos += int64(n)
		offset -= int64(n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return s.pos, core.NewIOError("seek", s.name, err)
		}
	}
	return s.pos, nil
}

// AtEnd peeks one byte; the read position does not move. Only a clean end
// of input counts; other read failures are left for the next Read.
func (s *Stream) AtEnd() bool {
	if s.closed {
		return true
	}
	_, err := s.r.Peek(1)
	return errors.Is(err, io.EOF)
}

// Size reports the length of regular files.
func (s *Stream) Size() (int64, bool) {
	if s.closed {
		return 0, false
	}
	fi, err := s.f.Stat()
	if err != nil || !fi.Mode().IsRegular() {
		return 0, false
	}
	return fi.Size(), true
}

// Offset returns the logical read position.
func (s *Stream) Offset() int64 { return s.pos }

func (s *Stream) Close() error {
	if s.closed {
		return core.ErrClosed
	}
	s.closed = true
	if !s.owned {
		return nil
	}
	return core.NewIOError("close", s.name, s.f.Close())
}

// StreamSink writes through a buffer to a file or stdout.
type StreamSink struct {
	f      *os.File
	w      *bufio.Writer
	name   string
	owned  bool
	closed bool
}

// CreateStream opens path for buffered writing; "-" writes standard output.
func CreateStream(path string, append bool) (*StreamSink, error) {
	if path == Stdin {
		return NewStreamSink(os.Stdout, "stdout", false), nil
	}
	flags := os.O_WRONLY | os.O_CREATE
	if append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, core.NewIOError("open", path, err)
	}
	return NewStreamSink(f, path, true), nil
}

// NewStreamSink wraps an open file. The file is closed by Close only when owned.
func NewStreamSink(f *os.File, name string, owned bool) *StreamSink {
	return &StreamSink{
		f:     f,
		w:     bufio.NewWriterSize(f, streamBufferSize),
		name:  name,
		owned: owned,
	}
}

func (s *StreamSink) Name() string { return s.name }

func (s *StreamSink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, core.ErrClosed
	}
	n, err := s.w.Write(p)
	return n, core.NewIOError("write", s.name, err)
}

func (s *StreamSink) Flush() error {
	if s.closed {
		return core.ErrClosed
	}
	return core.NewIOError("flush", s.name, s.w.Flush())
}

func (s *StreamSink) Close() error {
	if s.closed {
		return core.ErrClosed
	}
	err := s.Flush()
	s.closed = true
	if s.owned {
		if cerr := s.f.Close(); err == nil {
			err = core.NewIOError("close", s.name, cerr)
		}
	}
	return err
}
