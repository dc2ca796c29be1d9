package unified2

import (
	"fmt"

	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/metrics"
	"firestige.xyz/u2kit/internal/source"
)

// Writer appends entries to a sink. It borrows each entry only for the
// duration of WriteEntry.
type Writer struct {
	sink source.Sink
	buf  []byte
}

func NewWriter(sink source.Sink) *Writer {
	return &Writer{sink: sink, buf: make([]byte, 0, PacketHeaderSize+EventIPv6V2Size)}
}

// CreateWriter opens path with the named sink backend.
func CreateWriter(kind, path string, append bool) (*Writer, error) {
	sink, err := source.Create(kind, path, append)
	if err != nil {
		return nil, err
	}
	return NewWriter(sink), nil
}

func (w *Writer) Sink() source.Sink { return w.sink }

// WriteEntry writes the header, the payload and, for packets, the data.
// Header.Length is written as given. The payload is encoded before anything
// is written, so entries rejected with core.ErrInvalidEntry or
// core.ErrAddressFamily leave the sink untouched.
func (w *Writer) WriteEntry(e *Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	var (
		payload []byte
		data    []byte
		err     error
	)
	switch r := e.Record.(type) {
	case *Event:
		payload, err = AppendEvent(w.buf[:0], e.Header.Type, r)
	case *Packet:
		if len(r.Data) != int(r.PacketLength) {
			return fmt.Errorf("%w: packet_length %d but %d data bytes", core.ErrInvalidEntry, r.PacketLength, len(r.Data))
		}
		payload, err = packetLayout.append(w.buf[:0], r)
		data = r.Data
	}
	if err != nil {
		return err
	}
	w.buf = payload[:0]

	if err := WriteHeader(w.sink, e.Header); err != nil {
		return err
	}
	if err := writeFull(w.sink, e.Header.Type.String(), payload); err != nil {
		return err
	}
	if len(data) > 0 {
		if err := writeFull(w.sink, "packet data", data); err != nil {
			return err
		}
	}
	metrics.RecordsWrittenTotal.WithLabelValues(e.Header.Type.String()).Inc()
	return nil
}

// Flush pushes buffered bytes to the underlying file, if the sink buffers.
func (w *Writer) Flush() error {
	if f, ok := w.sink.(source.Flusher); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes and closes the sink.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		w.sink.Close()
		return err
	}
	return w.sink.Close()
}
