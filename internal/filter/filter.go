// Package filter selects which entries reach a front-end.
//
// Filters form a chain of responsibility: each one either passes the entry
// on by calling chain.Filter or drops it by returning.
package filter

import (
	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/unified2"
)

type Filter interface {
	Filter(e *unified2.Entry, chain Chain)
}

// Chain hands an entry to the next filter, or to the handler after the last.
type Chain interface {
	Filter(e *unified2.Entry)
}

// CounterFilter counts every entry it sees per record type and passes it on.
type CounterFilter struct {
	counts map[core.RecordType]int
	total  int
}

func NewCounterFilter() *CounterFilter {
	return &CounterFilter{counts: make(map[core.RecordType]int)}
}

func (f *CounterFilter) Filter(e *unified2.Entry, chain Chain) {
	f.counts[e.Header.Type]++
	f.total++
	chain.Filter(e)
}

func (f *CounterFilter) GetCount() int {
	return f.total
}

// Counts returns a copy of the per-type counts.
func (f *CounterFilter) Counts() map[core.RecordType]int {
	out := make(map[core.RecordType]int, len(f.counts))
	for t, n := range f.counts {
		out[t] = n
	}
	return out
}

// TypeFilter passes entries whose record type is in the set.
type TypeFilter struct {
	types map[core.RecordType]struct{}
}

func NewTypeFilter(types ...core.RecordType) *TypeFilter {
	f := &TypeFilter{types: make(map[core.RecordType]struct{}, len(types))}
	for _, t := range types {
		f.types[t] = struct{}{}
	}
	return f
}

func (f *TypeFilter) Filter(e *unified2.Entry, chain Chain) {
	if _, ok := f.types[e.Header.Type]; ok {
		chain.Filter(e)
	}
}

type eventKey struct {
	sensor uint32
	event  uint32
}

// SignatureFilter passes events whose signature id is in the set, and the
// packets that belong to those events. A packet belongs to the most recent
// event with the same sensor and event id.
type SignatureFilter struct {
	sids     map[uint32]struct{}
	accepted map[eventKey]struct{}
}

func NewSignatureFilter(sids ...uint32) *SignatureFilter {
	f := &SignatureFilter{
		sids:     make(map[uint32]struct{}, len(sids)),
		accepted: make(map[eventKey]struct{}),
	}
	for _, sid := range sids {
		f.sids[sid] = struct{}{}
	}
	return f
}

func (f *SignatureFilter) Filter(e *unified2.Entry, chain Chain) {
	switch r := e.Record.(type) {
	case *unified2.Event:
		key := eventKey{r.SensorID, r.EventID}
		if _, ok := f.sids[r.SignatureID]; ok {
			f.accepted[key] = struct{}{}
			chain.Filter(e)
			return
		}
		delete(f.accepted, key)
	case *unified2.Packet:
		if _, ok := f.accepted[eventKey{r.SensorID, r.EventID}]; ok {
			chain.Filter(e)
		}
	}
}
