package cmd

import (
	"context"
	"time"

	"firestige.xyz/u2kit/internal/unified2"
)

// EntryReader is the part of unified2.Reader the commands use.
type EntryReader interface {
	NextInto(e *unified2.Entry) error
	Follow(ctx context.Context, interval time.Duration, fn func(*unified2.Entry) error) error
	Close() error
}

// openReader is replaced by tests to inject a mock reader.
var openReader = func(backend, path string) (EntryReader, error) {
	return unified2.OpenReader(backend, path)
}
