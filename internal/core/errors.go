// Package core defines sentinel errors.
package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match them with errors.Is; end of stream is io.EOF.
var (
	// Byte source / sink errors
	ErrIO         = errors.New("u2kit: i/o error")
	ErrClosed     = errors.New("u2kit: source already closed")
	ErrOutOfRange = errors.New("u2kit: seek out of range")

	// Record decoding errors
	ErrTruncated     = errors.New("u2kit: truncated record")
	ErrDecode        = errors.New("u2kit: record decode failed")
	ErrPartialRecord = errors.New("u2kit: partial packet record")

	// Record encoding errors
	ErrAddressFamily = errors.New("u2kit: address family does not match record type")
	ErrInvalidEntry  = errors.New("u2kit: invalid entry")

	// Configuration errors
	ErrConfigInvalid = errors.New("u2kit: invalid configuration")
)

// IOError records a failed byte-level operation on a source or sink.
type IOError struct {
	Op   string // open, read, write, seek, close
	Name string // path or backend description
	Err  error
}

func (e *IOError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("u2kit: %s %s failed", e.Op, e.Name)
	}
	return fmt.Sprintf("u2kit: %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// NewIOError wraps err as an IOError. A nil err yields nil.
func NewIOError(op, name string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Name: name, Err: err}
}

// DecodeError reports a fixed-size payload that came up short.
type DecodeError struct {
	Type RecordType
	Want int // bytes required by the shape
	Got  int // bytes actually read
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("u2kit: decode %s: read %d of %d bytes", e.Type, e.Got, e.Want)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
