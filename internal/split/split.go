// Package split spreads entries over numbered output files.
package split

import (
	"fmt"

	"firestige.xyz/u2kit/internal/log"
	"firestige.xyz/u2kit/internal/unified2"
)

// FileName returns the name of the n-th output file for prefix.
func FileName(prefix string, n int) string {
	return fmt.Sprintf("%s_%05d", prefix, n)
}

// Writer starts a new file every Count entries. Files are opened on the first
// entry that lands in them, so no empty trailing file is left behind.
type Writer struct {
	backend string
	prefix  string
	count   int

	cur     *unified2.Writer
	written int
	files   []string
}

// NewWriter splits into files named prefix_00000, prefix_00001, and so on.
// A count of zero or less puts every entry into the first file.
func NewWriter(backend, prefix string, count int) *Writer {
	return &Writer{backend: backend, prefix: prefix, count: count}
}

func (w *Writer) WriteEntry(e *unified2.Entry) error {
	if w.cur != nil && w.count > 0 && w.written >= w.count {
		if err := w.rotate(); err != nil {
			return err
		}
	}
	if w.cur == nil {
		name := FileName(w.prefix, len(w.files))
		cur, err := unified2.CreateWriter(w.backend, name, false)
		if err != nil {
			return err
		}
		log.GetLogger().WithField("file", name).Debug("opened split output")
		w.cur, w.written = cur, 0
		w.files = append(w.files, name)
	}
	if err := w.cur.WriteEntry(e); err != nil {
		return err
	}
	w.written++
	return nil
}

func (w *Writer) rotate() error {
	err := w.cur.Close()
	w.cur = nil
	return err
}

// Files lists the outputs opened so far, in order.
func (w *Writer) Files() []string { return w.files }

func (w *Writer) Close() error {
	if w.cur == nil {
		return nil
	}
	return w.rotate()
}
