package unified2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"firestige.xyz/u2kit/internal/core"
)

// HeaderSize is the encoded size of a record header.
const HeaderSize = 8

// Header precedes every record.
type Header struct {
	Type   core.RecordType
	Length uint32 // payload bytes following the header
}

// ParseHeader decodes the first HeaderSize bytes of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header: have %d of %d bytes", core.ErrTruncated, len(b), HeaderSize)
	}
	return Header{
		Type:   core.RecordType(binary.BigEndian.Uint32(b[0:4])),
		Length: binary.BigEndian.Uint32(b[4:8]),
	}, nil
}

// AppendBinary appends the wire form of h to b.
func (h Header) AppendBinary(b []byte) ([]byte, error) {
	b = binary.BigEndian.AppendUint32(b, uint32(h.Type))
	return binary.BigEndian.AppendUint32(b, h.Length), nil
}

func (h Header) MarshalBinary() ([]byte, error) {
	return h.AppendBinary(make([]byte, 0, HeaderSize))
}

func (h *Header) UnmarshalBinary(b []byte) error {
	parsed, err := ParseHeader(b)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ReadHeader reads one header from r. It returns io.EOF when r is exhausted
// at a record boundary and core.ErrTruncated when only part of a header is
// present.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	n, err := io.ReadFull(r, buf[:])
	switch {
	case err == nil:
	case errors.Is(err, io.EOF) && n == 0:
		return Header{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return Header{}, fmt.Errorf("%w: header: read %d of %d bytes", core.ErrTruncated, n, HeaderSize)
	default:
		return Header{}, readError("header", err)
	}
	return ParseHeader(buf[:])
}

// WriteHeader writes h to w in full.
func WriteHeader(w io.Writer, h Header) error {
	var buf [HeaderSize]byte
	b, _ := h.AppendBinary(buf[:0])
	return writeFull(w, "header", b)
}

// readError keeps source errors as they are and tags anything else as I/O.
func readError(what string, err error) error {
	if errors.Is(err, core.ErrIO) || errors.Is(err, core.ErrClosed) {
		return err
	}
	return core.NewIOError("read", what, err)
}

func writeFull(w io.Writer, what string, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		if errors.Is(err, core.ErrIO) || errors.Is(err, core.ErrClosed) {
			return err
		}
		return core.NewIOError("write", what, err)
	}
	if n != len(b) {
		return core.NewIOError("write", what, io.ErrShortWrite)
	}
	return nil
}
