package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"firestige.xyz/u2kit/internal/core"
)

var errEmptyBuffer = errors.New("empty buffer")

func init() {
	Register(string(KindMemory), func(target string) (Source, error) { return LoadMemory(target) })
}

// Memory reads from a byte slice it does not own.
type Memory struct {
	buf     []byte
	pos     int64
	name    string
	kind    Kind
	closed  bool
	release func() error
}

// OpenMemory wraps buf; an empty or nil buffer is rejected.
func OpenMemory(buf []byte) (*Memory, error) {
	if len(buf) == 0 {
		return nil, core.NewIOError("open", "memory", errEmptyBuffer)
	}
	return &Memory{buf: buf, name: "memory", kind: KindMemory}, nil
}

// LoadMemory reads the whole file at path into memory.
func LoadMemory(path string) (*Memory, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewIOError("open", path, err)
	}
	m, err := OpenMemory(buf)
	if err != nil {
		return nil, core.NewIOError("open", path, errEmptyBuffer)
	}
	m.name = path
	return m, nil
}

func (m *Memory) Kind() Kind   { return m.kind }
func (m *Memory) Name() string { return m.name }

func (m *Memory) Read(p []byte) (int, error) {
	if m.closed {
		return 0, core.ErrClosed
	}
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

// Seek fails with core.ErrOutOfRange if the cursor would leave [0, len]; the
// cursor is unchanged on failure.
func (m *Memory) Seek(offset int64, whence int) (int64, error) {
	if m.closed {
		return 0, core.ErrClosed
	}
	abs, ok := absolute(offset, whence, m.pos, int64(len(m.buf)))
	if !ok {
		return m.pos, fmt.Errorf("%w: invalid whence %d", core.ErrOutOfRange, whence)
	}
	if abs < 0 || abs > int64(len(m.buf)) {
		return m.pos, fmt.Errorf("%w: offset %d outside [0, %d]", core.ErrOutOfRange, abs, len(m.buf))
	}
	m.pos = abs
	return abs, nil
}

func (m *Memory) AtEnd() bool {
	return m.closed || m.pos >= int64(len(m.buf))
}

func (m *Memory) Size() (int64, bool) { return int64(len(m.buf)), true }

// Bytes returns the backing buffer.
func (m *Memory) Bytes() []byte { return m.buf }

func (m *Memory) Close() error {
	if m.closed {
		return core.ErrClosed
	}
	m.closed = true
	var err error
	if m.release != nil {
		err = core.NewIOError("close", m.name, m.release())
	}
	m.buf = nil
	return err
}

// MemorySink collects written bytes.
type MemorySink struct {
	buf    []byte
	closed bool
}

func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Name() string { return "memory" }

func (s *MemorySink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, core.ErrClosed
	}
	s.buf = append(s.buf, p...)
	return len(p), nil
}

// Bytes returns everything written so far; it stays valid after Close.
func (s *MemorySink) Bytes() []byte { return s.buf }

func (s *MemorySink) Close() error {
	if s.closed {
		return core.ErrClosed
	}
	s.closed = true
	return nil
}
