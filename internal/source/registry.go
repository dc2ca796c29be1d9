package source

import (
	"fmt"
	"sort"
	"sync"

	"firestige.xyz/u2kit/internal/core"
)

// Opener opens a source for target, usually a path.
type Opener func(target string) (Source, error)

// SinkOpener creates a sink at target, truncating it unless appending.
type SinkOpener func(target string, append bool) (Sink, error)

var (
	mu      sync.RWMutex
	sources = make(map[string]Opener)
	sinks   = make(map[string]SinkOpener)
)

// Register makes a source backend available under name.
func Register(name string, fn Opener) {
	mu.Lock()
	defer mu.Unlock()
	sources[name] = fn
}

// RegisterSink makes a sink backend available under name.
func RegisterSink(name string, fn SinkOpener) {
	mu.Lock()
	defer mu.Unlock()
	sinks[name] = fn
}

// Open opens target with the named backend.
func Open(name, target string) (Source, error) {
	mu.RLock()
	fn, ok := sources[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown source backend %q", core.ErrConfigInvalid, name)
	}
	return fn(target)
}

// Create opens target for writing with the named backend.
func Create(name, target string, append bool) (Sink, error) {
	mu.RLock()
	fn, ok := sinks[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown sink backend %q", core.ErrConfigInvalid, name)
	}
	return fn(target, append)
}

func Registered(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := sources[name]
	return ok
}

func SinkRegistered(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := sinks[name]
	return ok
}

// Names lists the source backends in lexical order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return sortedKeys(sources)
}

// SinkNames lists the sink backends in lexical order.
func SinkNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	return sortedKeys(sinks)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
