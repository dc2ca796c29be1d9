package unified2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/log"
	"firestige.xyz/u2kit/internal/metrics"
	"firestige.xyz/u2kit/internal/source"
)

// Reader assembles entries from a source, skipping record types it does not
// decode.
type Reader struct {
	src     source.Source
	log     log.Logger
	scratch []byte
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger routes skip diagnostics to l instead of the process logger.
func WithLogger(l log.Logger) Option {
	return func(r *Reader) { r.log = l }
}

func NewReader(src source.Source, opts ...Option) *Reader {
	r := &Reader{
		src:     src,
		scratch: make([]byte, EventIPv6V2Size),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = log.GetLogger()
	}
	return r
}

// OpenReader opens path with the named source backend.
func OpenReader(kind, path string, opts ...Option) (*Reader, error) {
	src, err := source.Open(kind, path)
	if err != nil {
		return nil, err
	}
	return NewReader(src, opts...), nil
}

func (r *Reader) Source() source.Source { return r.src }

func (r *Reader) Close() error { return r.src.Close() }

// Next returns the next decoded entry. At a clean end of input it returns
// io.EOF. When a packet's trailing data is missing it returns the entry and
// an error matching core.ErrPartialRecord.
func (r *Reader) Next() (*Entry, error) {
	e := new(Entry)
	if err := r.NextInto(e); err != nil {
		if errors.Is(err, core.ErrPartialRecord) {
			return e, err
		}
		return nil, err
	}
	return e, nil
}

// NextInto is Next decoding into e, which is reset first.
func (r *Reader) NextInto(e *Entry) error {
	e.Reset()
	for {
		if r.src.AtEnd() {
			return io.EOF
		}
		h, err := ReadHeader(r.src)
		if err != nil {
			return r.failed(err)
		}
		metrics.BytesReadTotal.Add(HeaderSize)

		switch {
		case h.Type.IsEvent():
			ev := new(Event)
			n, err := decodeEvent(r.src, h.Type, ev, r.scratch)
			metrics.BytesReadTotal.Add(float64(n))
			if err != nil {
				return r.failed(err)
			}
			e.Header, e.Record = h, ev
			metrics.RecordsReadTotal.WithLabelValues(h.Type.String()).Inc()
			return nil

		case h.Type == core.TypePacket:
			p := new(Packet)
			n, err := decodePacket(r.src, p, r.scratch)
			metrics.BytesReadTotal.Add(float64(n))
			if err != nil {
				if !errors.Is(err, core.ErrPartialRecord) {
					return r.failed(err)
				}
				metrics.ReadWarningsTotal.Inc()
				e.Header, e.Record = h, p
				return err
			}
			e.Header, e.Record = h, p
			metrics.RecordsReadTotal.WithLabelValues(h.Type.String()).Inc()
			return nil

		default:
			if err := r.skip(h); err != nil {
				return r.failed(err)
			}
		}
	}
}

// skip moves past the body of a record that is not decoded. When the source
// knows its size, a body running past the end is reported as truncated
// rather than sought over.
func (r *Reader) skip(h Header) error {
	pos, err := r.src.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if sz, ok := r.src.(source.Sizer); ok {
		if size, known := sz.Size(); known && pos+int64(h.Length) > size {
			return fmt.Errorf("%w: %s record at offset %d declares %d bytes, %d remain",
				core.ErrTruncated, h.Type, pos-HeaderSize, h.Length, size-pos)
		}
	}

	r.log.WithFields(map[string]interface{}{
		"type":   h.Type.String(),
		"length": h.Length,
		"offset": pos - HeaderSize,
	}).Warn("skipping unsupported record")
	metrics.RecordsSkippedTotal.WithLabelValues(h.Type.String()).Inc()

	if _, err := r.src.Seek(int64(h.Length), io.SeekCurrent); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %s record body: %w", core.ErrTruncated, h.Type, err)
		}
		return err
	}
	metrics.BytesReadTotal.Add(float64(h.Length))
	return nil
}

func (r *Reader) failed(err error) error {
	switch {
	case errors.Is(err, io.EOF):
	case errors.Is(err, core.ErrTruncated):
		metrics.ReadErrorsTotal.WithLabelValues(metrics.ReasonTruncated).Inc()
	case errors.Is(err, core.ErrDecode):
		metrics.ReadErrorsTotal.WithLabelValues(metrics.ReasonDecode).Inc()
	default:
		metrics.ReadErrorsTotal.WithLabelValues(metrics.ReasonIO).Inc()
	}
	return err
}

// Follow reads entries as a log grows, calling fn for each complete one.
// When the reader reaches the end of input, or a record that is still being
// written, it rewinds to the start of that record and polls again every
// interval. Follow returns the context error once ctx is done, or the first
// error from fn or a hard read failure.
func (r *Reader) Follow(ctx context.Context, interval time.Duration, fn func(*Entry) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var e Entry
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		start, err := r.src.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}

		err = r.NextInto(&e)
		if err == nil {
			if err := fn(&e); err != nil {
				return err
			}
			continue
		}
		if !incomplete(err) {
			return err
		}
		if _, err := r.src.Seek(start, io.SeekStart); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// incomplete reports errors that a writer still appending to the log can
// cause.
func incomplete(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, core.ErrTruncated) ||
		errors.Is(err, core.ErrDecode) ||
		errors.Is(err, core.ErrPartialRecord)
}
