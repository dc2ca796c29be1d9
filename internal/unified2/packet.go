package unified2

import (
	"errors"
	"fmt"
	"io"
	"time"

	"firestige.xyz/u2kit/internal/core"
)

// PacketHeaderSize is the fixed part of a packet record.
const PacketHeaderSize = 28

// maxPrealloc bounds the up-front allocation for packet data; longer
// payloads grow as they are read so a corrupt length cannot force a huge
// allocation.
const maxPrealloc = 1 << 20

// Packet is a captured packet associated with an event.
type Packet struct {
	SensorID          uint32
	EventID           uint32
	EventSecond       uint32
	PacketSecond      uint32
	PacketMicrosecond uint32
	LinkType          uint32
	PacketLength      uint32
	Data              []byte // nil when the trailing data was missing
}

func (*Packet) record() {}

// Time returns the capture timestamp in UTC.
func (p *Packet) Time() time.Time {
	return time.Unix(int64(p.PacketSecond), int64(p.PacketMicrosecond)*int64(time.Microsecond)).UTC()
}

var packetLayout = newLayout(
	field[Packet]{"sensor_id", u32, func(p *Packet) any { return &p.SensorID }},
	field[Packet]{"event_id", u32, func(p *Packet) any { return &p.EventID }},
	field[Packet]{"event_second", u32, func(p *Packet) any { return &p.EventSecond }},
	field[Packet]{"packet_second", u32, func(p *Packet) any { return &p.PacketSecond }},
	field[Packet]{"packet_microsecond", u32, func(p *Packet) any { return &p.PacketMicrosecond }},
	field[Packet]{"linktype", u32, func(p *Packet) any { return &p.LinkType }},
	field[Packet]{"packet_length", u32, func(p *Packet) any { return &p.PacketLength }},
)

// DecodePacket reads a packet record payload from r. A short fixed header
// fails with a *core.DecodeError. Short trailing data returns the packet with
// nil Data and an error matching core.ErrPartialRecord.
func DecodePacket(r io.Reader) (*Packet, error) {
	p := new(Packet)
	if _, err := decodePacket(r, p, nil); err != nil {
		if errors.Is(err, core.ErrPartialRecord) {
			return p, err
		}
		return nil, err
	}
	return p, nil
}

func decodePacket(r io.Reader, p *Packet, scratch []byte) (int, error) {
	if cap(scratch) < PacketHeaderSize {
		scratch = make([]byte, PacketHeaderSize)
	}
	buf := scratch[:PacketHeaderSize]
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return n, shortRead(core.TypePacket, PacketHeaderSize, n, err)
	}
	*p = Packet{}
	packetLayout.decode(buf, p)

	if p.PacketLength == 0 {
		p.Data = []byte{}
		return n, nil
	}
	data, got, err := readData(r, p.PacketLength)
	n += got
	if err != nil {
		return n, err
	}
	p.Data = data
	return n, nil
}

func readData(r io.Reader, length uint32) ([]byte, int, error) {
	var (
		data []byte
		n    int
		err  error
	)
	if length <= maxPrealloc {
		data = make([]byte, length)
		n, err = io.ReadFull(r, data)
	} else {
		data, err = io.ReadAll(io.LimitReader(r, int64(length)))
		n = len(data)
		if err == nil && n < int(length) {
			err = io.ErrUnexpectedEOF
		}
	}
	switch {
	case err == nil:
		return data, n, nil
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		return nil, n, fmt.Errorf("%w: packet data: read %d of %d bytes", core.ErrPartialRecord, n, length)
	default:
		return nil, n, readError("packet data", err)
	}
}

// AppendPacket appends the fixed header and data of p to b. Data must hold
// exactly PacketLength bytes.
func AppendPacket(b []byte, p *Packet) ([]byte, error) {
	if len(p.Data) != int(p.PacketLength) {
		return b, fmt.Errorf("%w: packet_length %d but %d data bytes", core.ErrInvalidEntry, p.PacketLength, len(p.Data))
	}
	b, err := packetLayout.append(b, p)
	if err != nil {
		return b, err
	}
	return append(b, p.Data...), nil
}

// EncodePacket writes the fixed header, then the data, each in full.
func EncodePacket(w io.Writer, p *Packet) error {
	if len(p.Data) != int(p.PacketLength) {
		return fmt.Errorf("%w: packet_length %d but %d data bytes", core.ErrInvalidEntry, p.PacketLength, len(p.Data))
	}
	hdr, err := packetLayout.append(make([]byte, 0, PacketHeaderSize), p)
	if err != nil {
		return err
	}
	if err := writeFull(w, "packet header", hdr); err != nil {
		return err
	}
	if len(p.Data) == 0 {
		return nil
	}
	return writeFull(w, "packet data", p.Data)
}
