package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/inspect"
	"firestige.xyz/u2kit/internal/unified2"
)

const bannerWidth = 67

var titles = map[core.RecordType]string{
	core.TypeIDSEvent:       "Event",
	core.TypeIDSEventV2:     "Event v2",
	core.TypeIDSEventIPv6:   "Event6",
	core.TypeIDSEventIPv6V2: "Event6 v2",
	core.TypePacket:         "Packet",
}

// Text renders the field-per-line dump with a hex table for packet data.
type Text struct {
	w         io.Writer
	inspector *inspect.Inspector
	buf       bytes.Buffer
}

func NewText(w io.Writer, opts Options) *Text {
	return &Text{w: w, inspector: opts.Inspector}
}

func (t *Text) Render(e *unified2.Entry) error {
	t.buf.Reset()
	b := &t.buf

	title, ok := titles[e.Header.Type]
	if !ok {
		title = e.Header.Type.String()
	}
	head := "__ " + title + " "
	fmt.Fprintf(b, "\n%s%s\n", head, strings.Repeat("_", bannerWidth-len(head)))

	switch r := e.Record.(type) {
	case *unified2.Event:
		writeEvent(b, e.Header.Type, r)
	case *unified2.Packet:
		writePacket(b, r)
		b.WriteByte('\n')
		HexDump(b, r.Data)
		if t.inspector != nil {
			writeLayers(b, t.inspector.Packet(r))
		}
	}
	_, err := t.w.Write(b.Bytes())
	return err
}

func (t *Text) Flush() error { return nil }

func row(b *bytes.Buffer, label string, v any) {
	fmt.Fprintf(b, "%-20s%v\n", label, v)
}

func writeEvent(b *bytes.Buffer, t core.RecordType, ev *unified2.Event) {
	row(b, "Sensor id", ev.SensorID)
	row(b, "Event id", ev.EventID)
	row(b, "Event second", ev.EventSecond)
	row(b, "Event microsecond", ev.EventMicrosecond)
	row(b, "Signature id", ev.SignatureID)
	row(b, "Generator id", ev.GeneratorID)
	row(b, "Signature rev", ev.SignatureRevision)
	row(b, "Classification id", ev.ClassificationID)
	row(b, "Priority id", ev.PriorityID)
	row(b, "IP source", ev.IPSource)
	row(b, "IP destination", ev.IPDestination)
	row(b, "Source port", ev.SportItype)
	row(b, "Destination port", ev.DportIcode)
	row(b, "Protocol", ev.Protocol)
	row(b, "Packet action", ev.PacketAction)
	if t.IsV2() {
		row(b, "MPLS Label", ev.MPLSLabel)
		row(b, "Vlan ID", ev.VLANID)
		row(b, "Policy ID", ev.PolicyID)
	}
}

func writePacket(b *bytes.Buffer, p *unified2.Packet) {
	row(b, "Sensor id", p.SensorID)
	row(b, "Event id", p.EventID)
	row(b, "Event second", p.EventSecond)
	row(b, "Packet second", p.PacketSecond)
	row(b, "Packet microsecond", p.PacketMicrosecond)
	row(b, "Packet linktype", p.LinkType)
	row(b, "Packet length", p.PacketLength)
}

func writeLayers(b *bytes.Buffer, res inspect.Result) {
	if len(res.Layers) == 0 && res.Err == nil {
		return
	}
	b.WriteByte('\n')
	for _, l := range res.Layers {
		fmt.Fprintf(b, "%-10s%s\n", l.Name, l.Summary)
	}
	if res.Err != nil {
		fmt.Fprintf(b, "%-10s%v\n", "error", res.Err)
	}
}

// HexDump writes data as rows of 16 bytes: offset, hex, printable text.
func HexDump(w io.Writer, data []byte) {
	var line bytes.Buffer
	for off := 0; off < len(data); off += 16 {
		end := off + 16
		if end > len(data) {
			end = len(data)
		}
		chunk := data[off:end]

		line.Reset()
		fmt.Fprintf(&line, "%04X  ", off)
		for _, c := range chunk {
			fmt.Fprintf(&line, "%02X ", c)
		}
		line.WriteString(strings.Repeat("   ", 16-len(chunk)))
		line.WriteByte(' ')
		for _, c := range chunk {
			if c >= 0x20 && c < 0x7f {
				line.WriteByte(c)
			} else {
				line.WriteByte('.')
			}
		}
		line.WriteByte('\n')
		w.Write(line.Bytes())
	}
}
