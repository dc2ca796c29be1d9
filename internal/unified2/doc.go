// Package unified2 reads and writes unified2 logs, the append-only binary
// format intrusion detection sensors use for alerts and the packets that
// triggered them.
//
// A log is a flat sequence of records, each an 8-byte header (type and
// payload length, big-endian) followed by the payload. Four event shapes and
// the packet shape are decoded:
//
//	type   2  packet           28-byte header + packet_length bytes
//	type   7  ids-event         52 bytes, IPv4
//	type  72  ids-event-ipv6    76 bytes, IPv6
//	type 104  ids-event-v2      60 bytes, IPv4 + MPLS/VLAN/policy
//	type 105  ids-event-ipv6-v2 84 bytes, IPv6 + MPLS/VLAN/policy
//
// Every other type is skipped using the length in its header. A Reader
// returns io.EOF at a clean record boundary. A packet record whose trailing
// data is cut short is returned together with an error matching
// core.ErrPartialRecord; callers may keep the entry and continue.
package unified2
