package unified2

import (
	"errors"
	"fmt"
	"io"
	"net/netip"
	"time"

	"firestige.xyz/u2kit/internal/core"
)

// Encoded sizes of the event shapes.
const (
	EventSize       = 52
	EventV2Size     = 60
	EventIPv6Size   = 76
	EventIPv6V2Size = 84
)

// Event is an IDS alert. One struct covers all four shapes; the record type
// decides the address family and whether the MPLS/VLAN/policy fields are on
// the wire.
type Event struct {
	SensorID          uint32
	EventID           uint32
	EventSecond       uint32
	EventMicrosecond  uint32
	SignatureID       uint32
	GeneratorID       uint32
	SignatureRevision uint32
	ClassificationID  uint32
	PriorityID        uint32
	IPSource          netip.Addr
	IPDestination     netip.Addr
	SportItype        uint16
	DportIcode        uint16
	Protocol          uint8
	PacketAction      uint8
	Pad               uint16

	// v2 only
	MPLSLabel uint32
	VLANID    uint16
	PolicyID  uint16
}

func (*Event) record() {}

// Time returns the event timestamp in UTC.
func (e *Event) Time() time.Time {
	return time.Unix(int64(e.EventSecond), int64(e.EventMicrosecond)*int64(time.Microsecond)).UTC()
}

func eventFields(addr kind, v2 bool) []field[Event] {
	fields := []field[Event]{
		{"sensor_id", u32, func(e *Event) any { return &e.SensorID }},
		{"event_id", u32, func(e *Event) any { return &e.EventID }},
		{"event_second", u32, func(e *Event) any { return &e.EventSecond }},
		{"event_microsecond", u32, func(e *Event) any { return &e.EventMicrosecond }},
		{"signature_id", u32, func(e *Event) any { return &e.SignatureID }},
		{"generator_id", u32, func(e *Event) any { return &e.GeneratorID }},
		{"signature_revision", u32, func(e *Event) any { return &e.SignatureRevision }},
		{"classification_id", u32, func(e *Event) any { return &e.ClassificationID }},
		{"priority_id", u32, func(e *Event) any { return &e.PriorityID }},
		{"ip_source", addr, func(e *Event) any { return &e.IPSource }},
		{"ip_destination", addr, func(e *Event) any { return &e.IPDestination }},
		{"sport_itype", u16, func(e *Event) any { return &e.SportItype }},
		{"dport_icode", u16, func(e *Event) any { return &e.DportIcode }},
		{"protocol", u8, func(e *Event) any { return &e.Protocol }},
		{"packet_action", u8, func(e *Event) any { return &e.PacketAction }},
		{"pad", u16, func(e *Event) any { return &e.Pad }},
	}
	if v2 {
		fields = append(fields,
			field[Event]{"mpls_label", u32, func(e *Event) any { return &e.MPLSLabel }},
			field[Event]{"vlan_id", u16, func(e *Event) any { return &e.VLANID }},
			field[Event]{"policy_id", u16, func(e *Event) any { return &e.PolicyID }},
		)
	}
	return fields
}

var eventLayouts = map[core.RecordType]layout[Event]{
	core.TypeIDSEvent:       newLayout(eventFields(addr4, false)...),
	core.TypeIDSEventV2:     newLayout(eventFields(addr4, true)...),
	core.TypeIDSEventIPv6:   newLayout(eventFields(addr16, false)...),
	core.TypeIDSEventIPv6V2: newLayout(eventFields(addr16, true)...),
}

// EventSizeOf returns the encoded size of the event shape for t.
func EventSizeOf(t core.RecordType) (int, bool) {
	l, ok := eventLayouts[t]
	return l.size, ok
}

func eventLayout(t core.RecordType) (layout[Event], error) {
	l, ok := eventLayouts[t]
	if !ok {
		return l, fmt.Errorf("%w: %s is not an event type", core.ErrInvalidEntry, t)
	}
	return l, nil
}

// DecodeEvent reads one event payload of shape t from r. Exactly the shape's
// size is consumed; a short read fails with a *core.DecodeError.
func DecodeEvent(r io.Reader, t core.RecordType) (*Event, error) {
	ev := new(Event)
	if _, err := decodeEvent(r, t, ev, nil); err != nil {
		return nil, err
	}
	return ev, nil
}

// decodeEvent uses scratch when it is large enough and reports bytes consumed.
func decodeEvent(r io.Reader, t core.RecordType, ev *Event, scratch []byte) (int, error) {
	l, err := eventLayout(t)
	if err != nil {
		return 0, err
	}
	if cap(scratch) < l.size {
		scratch = make([]byte, l.size)
	}
	buf := scratch[:l.size]
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return n, shortRead(t, l.size, n, err)
	}
	*ev = Event{}
	l.decode(buf, ev)
	return n, nil
}

// AppendEvent appends the shape-t encoding of ev to b.
func AppendEvent(b []byte, t core.RecordType, ev *Event) ([]byte, error) {
	l, err := eventLayout(t)
	if err != nil {
		return b, err
	}
	return l.append(b, ev)
}

// EncodeEvent writes the shape-t encoding of ev to w in full.
func EncodeEvent(w io.Writer, t core.RecordType, ev *Event) error {
	b, err := AppendEvent(make([]byte, 0, EventIPv6V2Size), t, ev)
	if err != nil {
		return err
	}
	return writeFull(w, t.String(), b)
}

func shortRead(t core.RecordType, want, got int, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &core.DecodeError{Type: t, Want: want, Got: got, Err: io.ErrUnexpectedEOF}
	}
	return readError(t.String(), err)
}
