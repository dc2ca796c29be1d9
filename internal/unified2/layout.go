package unified2

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"firestige.xyz/u2kit/internal/core"
)

// kind is the wire encoding of one field.
type kind uint8

const (
	u8     kind = iota // one byte, verbatim
	u16                // big-endian
	u32                // big-endian
	addr4              // IPv4 address, network order
	addr16             // IPv6 address, verbatim
)

func (k kind) width() int {
	switch k {
	case u8:
		return 1
	case u16:
		return 2
	case u32, addr4:
		return 4
	case addr16:
		return 16
	}
	panic(fmt.Sprintf("unified2: unknown field kind %d", k))
}

// field binds a wire slot to a struct member. ref returns a pointer of the
// Go type matching kind: *uint8, *uint16, *uint32 or *netip.Addr.
type field[T any] struct {
	name string
	kind kind
	ref  func(*T) any
}

// layout is the ordered field table of one fixed-size shape.
type layout[T any] struct {
	fields []field[T]
	size   int
}

func newLayout[T any](fields ...field[T]) layout[T] {
	size := 0
	for _, f := range fields {
		size += f.kind.width()
	}
	return layout[T]{fields: fields, size: size}
}

// decode fills v from b, which must hold at least l.size bytes.
func (l layout[T]) decode(b []byte, v *T) {
	off := 0
	for _, f := range l.fields {
		w := f.kind.width()
		p := b[off : off+w]
		switch f.kind {
		case u8:
			*f.ref(v).(*uint8) = p[0]
		case u16:
			*f.ref(v).(*uint16) = binary.BigEndian.Uint16(p)
		case u32:
			*f.ref(v).(*uint32) = binary.BigEndian.Uint32(p)
		case addr4:
			*f.ref(v).(*netip.Addr) = netip.AddrFrom4([4]byte(p))
		case addr16:
			*f.ref(v).(*netip.Addr) = netip.AddrFrom16([16]byte(p))
		}
		off += w
	}
}

// append encodes v onto b. An unset address encodes as all zeros; an address
// of the other family fails with core.ErrAddressFamily.
func (l layout[T]) append(b []byte, v *T) ([]byte, error) {
	for _, f := range l.fields {
		switch f.kind {
		case u8:
			b = append(b, *f.ref(v).(*uint8))
		case u16:
			b = binary.BigEndian.AppendUint16(b, *f.ref(v).(*uint16))
		case u32:
			b = binary.BigEndian.AppendUint32(b, *f.ref(v).(*uint32))
		case addr4:
			a := *f.ref(v).(*netip.Addr)
			switch {
			case !a.IsValid():
				b = append(b, 0, 0, 0, 0)
			case a.Is4():
				raw := a.As4()
				b = append(b, raw[:]...)
			default:
				return b, fmt.Errorf("%w: %s is %s, want IPv4", core.ErrAddressFamily, f.name, a)
			}
		case addr16:
			a := *f.ref(v).(*netip.Addr)
			switch {
			case !a.IsValid():
				b = append(b, make([]byte, 16)...)
			case a.Is6():
				raw := a.As16()
				b = append(b, raw[:]...)
			default:
				return b, fmt.Errorf("%w: %s is %s, want IPv6", core.ErrAddressFamily, f.name, a)
			}
		}
	}
	return b, nil
}
