// Package export converts packet records to pcapng.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/u2kit/internal/unified2"
)

// PcapWriter writes packet records as pcapng, one interface per link type.
type PcapWriter struct {
	w      io.Writer
	ng     *pcapgo.NgWriter
	ifaces map[uint32]int
}

func NewPcapWriter(w io.Writer) *PcapWriter {
	return &PcapWriter{w: w, ifaces: make(map[uint32]int)}
}

func ngInterface(linkType uint32) pcapgo.NgInterface {
	return pcapgo.NgInterface{
		Name:       fmt.Sprintf("linktype%d", linkType),
		Comment:    "unified2 packet records",
		LinkType:   layers.LinkType(linkType),
		SnapLength: uint32(math.MaxUint16),
	}
}

func (p *PcapWriter) iface(linkType uint32) (int, error) {
	if idx, ok := p.ifaces[linkType]; ok {
		return idx, nil
	}
	if p.ng == nil {
		ng, err := pcapgo.NewNgWriterInterface(p.w, ngInterface(linkType), pcapgo.NgWriterOptions{
			SectionInfo: pcapgo.NgSectionInfo{
				Application: "u2kit",
			},
		})
		if err != nil {
			return 0, err
		}
		p.ng = ng
		p.ifaces[linkType] = 0
		return 0, nil
	}
	idx, err := p.ng.AddInterface(ngInterface(linkType))
	if err != nil {
		return 0, err
	}
	p.ifaces[linkType] = idx
	return idx, nil
}

// WriteEntry writes packet entries and reports whether anything was written.
// Events and packets without data are ignored.
func (p *PcapWriter) WriteEntry(e *unified2.Entry) (bool, error) {
	pkt, ok := e.Packet()
	if !ok || len(pkt.Data) == 0 {
		return false, nil
	}
	idx, err := p.iface(pkt.LinkType)
	if err != nil {
		return false, err
	}
	length := int(pkt.PacketLength)
	if length < len(pkt.Data) {
		length = len(pkt.Data)
	}
	ci := gopacket.CaptureInfo{
		Timestamp:      pkt.Time(),
		CaptureLength:  len(pkt.Data),
		Length:         length,
		InterfaceIndex: idx,
	}
	if err := p.ng.WritePacket(ci, pkt.Data); err != nil {
		return false, err
	}
	return true, nil
}

// Flush writes buffered blocks. It is a no-op before the first packet.
func (p *PcapWriter) Flush() error {
	if p.ng == nil {
		return nil
	}
	return p.ng.Flush()
}
