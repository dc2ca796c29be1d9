package unified2

import (
	"fmt"

	"firestige.xyz/u2kit/internal/core"
)

// Record is the decoded payload of an entry: *Event or *Packet.
type Record interface {
	record()
}

// Entry is one decoded record. Record always matches Header.Type: an *Event
// for the event types, a *Packet for the packet type.
type Entry struct {
	Header Header
	Record Record
}

// Event returns the event payload, if the entry holds one.
func (e *Entry) Event() (*Event, bool) {
	ev, ok := e.Record.(*Event)
	return ev, ok
}

// Packet returns the packet payload, if the entry holds one.
func (e *Entry) Packet() (*Packet, bool) {
	p, ok := e.Record.(*Packet)
	return p, ok
}

// Reset drops the payload and header so the entry can be reused.
func (e *Entry) Reset() {
	e.Header = Header{}
	e.Record = nil
}

// Empty reports whether the entry holds nothing.
func (e *Entry) Empty() bool {
	return e.Record == nil && e.Header == Header{}
}

// Validate checks that the payload variant agrees with the header type.
func (e *Entry) Validate() error {
	t := e.Header.Type
	switch {
	case t.IsEvent():
		if _, ok := e.Record.(*Event); !ok {
			return fmt.Errorf("%w: %s entry holds %T", core.ErrInvalidEntry, t, e.Record)
		}
	case t == core.TypePacket:
		if _, ok := e.Record.(*Packet); !ok {
			return fmt.Errorf("%w: %s entry holds %T", core.ErrInvalidEntry, t, e.Record)
		}
	default:
		return fmt.Errorf("%w: %s records cannot be written", core.ErrInvalidEntry, t)
	}
	return nil
}

// NewEventEntry wraps ev as an entry of event type t with the matching length.
func NewEventEntry(t core.RecordType, ev *Event) (*Entry, error) {
	size, ok := EventSizeOf(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an event type", core.ErrInvalidEntry, t)
	}
	return &Entry{
		Header: Header{Type: t, Length: uint32(size)},
		Record: ev,
	}, nil
}

// NewPacketEntry wraps p as a packet entry. PacketLength is set from Data.
func NewPacketEntry(p *Packet) *Entry {
	p.PacketLength = uint32(len(p.Data))
	return &Entry{
		Header: Header{Type: core.TypePacket, Length: uint32(PacketHeaderSize + len(p.Data))},
		Record: p,
	}
}
