// Package core defines core types.
package core

import "strconv"

// RecordType is the type tag carried by every unified2 record header.
type RecordType uint32

// Record type ids defined by the unified2 format. Only the packet and the
// four IDS event types are decoded; the rest are skipped by length.
const (
	TypeEvent            RecordType = 1
	TypePacket           RecordType = 2
	TypeIDSEvent         RecordType = 7
	TypeEventExtended    RecordType = 66
	TypePerformance      RecordType = 67
	TypePortscan         RecordType = 68
	TypeIDSEventIPv6     RecordType = 72
	TypeIDSEventMPLS     RecordType = 99
	TypeIDSEventIPv6MPLS RecordType = 100
	TypeIDSEventV2       RecordType = 104
	TypeIDSEventIPv6V2   RecordType = 105
	TypeExtraData        RecordType = 110
)

var typeNames = map[RecordType]string{
	TypeEvent:            "event",
	TypePacket:           "packet",
	TypeIDSEvent:         "ids-event",
	TypeEventExtended:    "event-extended",
	TypePerformance:      "performance",
	TypePortscan:         "portscan",
	TypeIDSEventIPv6:     "ids-event-ipv6",
	TypeIDSEventMPLS:     "ids-event-mpls",
	TypeIDSEventIPv6MPLS: "ids-event-ipv6-mpls",
	TypeIDSEventV2:       "ids-event-v2",
	TypeIDSEventIPv6V2:   "ids-event-ipv6-v2",
	TypeExtraData:        "extra-data",
}

func (t RecordType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown(" + strconv.FormatUint(uint64(t), 10) + ")"
}

// IsEvent reports whether t is one of the four decoded event shapes.
func (t RecordType) IsEvent() bool {
	switch t {
	case TypeIDSEvent, TypeIDSEventV2, TypeIDSEventIPv6, TypeIDSEventIPv6V2:
		return true
	}
	return false
}

// IsDecoded reports whether records of type t are decoded rather than skipped.
func (t RecordType) IsDecoded() bool {
	return t == TypePacket || t.IsEvent()
}

// IsIPv6 reports whether an event of type t carries 128-bit addresses.
func (t RecordType) IsIPv6() bool {
	return t == TypeIDSEventIPv6 || t == TypeIDSEventIPv6V2
}

// IsV2 reports whether an event of type t carries the MPLS/VLAN/policy fields.
func (t RecordType) IsV2() bool {
	return t == TypeIDSEventV2 || t == TypeIDSEventIPv6V2
}

// ParseRecordType accepts either a numeric id or a name as printed by String.
func ParseRecordType(s string) (RecordType, bool) {
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return RecordType(n), true
	}
	for t, name := range typeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}
