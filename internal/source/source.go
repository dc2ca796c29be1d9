// Package source provides the byte sources unified2 logs are read from and
// the sinks they are written to.
//
// A Source is a seekable byte stream with an end-of-input check. Backends are
// selected by name through the registry: stream (buffered file or stdin),
// descriptor (raw file descriptor), memory (file loaded into a buffer) and
// mmap (read-only memory map). Sources and sinks are not safe for concurrent
// use.
package source

import (
	"io"
)

// Kind names a backend.
type Kind string

const (
	KindStream     Kind = "stream"
	KindDescriptor Kind = "descriptor"
	KindMemory     Kind = "memory"
	KindMapped     Kind = "mmap"
)

func (k Kind) String() string { return string(k) }

// Source is a readable, seekable byte source.
//
// Read follows io.Reader and returns io.EOF at end of input. AtEnd reports
// whether no byte is available at the current position without moving it.
// Every operation after Close fails with core.ErrClosed.
type Source interface {
	io.ReadSeekCloser
	AtEnd() bool
	Kind() Kind
	Name() string
}

// Sizer is implemented by sources that know their total length. The second
// result is false when the size cannot be determined (pipes, terminals).
type Sizer interface {
	Size() (int64, bool)
}

// Sink is a byte destination for encoded records.
type Sink interface {
	io.WriteCloser
	Name() string
}

// Flusher is implemented by buffered sinks.
type Flusher interface {
	Flush() error
}

// absolute resolves a seek request against the current position and size.
func absolute(offset int64, whence int, cur, size int64) (int64, bool) {
	switch whence {
	case io.SeekStart:
		return offset, true
	case io.SeekCurrent:
		return cur + offset, true
	case io.SeekEnd:
		return size + offset, true
	}
	return 0, false
}
