// Package inspect decodes the captured bytes of packet records into
// per-layer summaries.
package inspect

import (
	"fmt"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/unified2"
)

// Layer is one decoded protocol layer.
type Layer struct {
	Name    string `mapstructure:"name"`
	Summary string `mapstructure:"summary"`
}

// Result is everything recognised in one packet.
type Result struct {
	Layers []Layer     `mapstructure:"layers"`
	Labels core.Labels `mapstructure:"labels,omitempty"`
	Err    error       `mapstructure:"-"`
}

// Inspector decodes packets. It is not safe for concurrent use.
type Inspector struct {
	sip      *SipParser
	sipPorts map[uint16]struct{}
}

func NewInspector() *Inspector {
	return &Inspector{
		sip:      NewSipParser(),
		sipPorts: map[uint16]struct{}{5060: {}, 5061: {}},
	}
}

// Packet decodes p.Data using its link type. A packet without data yields an
// empty result.
func (in *Inspector) Packet(p *unified2.Packet) Result {
	if len(p.Data) == 0 {
		return Result{}
	}
	pkt := gopacket.NewPacket(p.Data, layers.LinkType(p.LinkType), gopacket.DecodeOptions{Lazy: true, NoCopy: true})

	var res Result
	for _, l := range pkt.Layers() {
		switch l.LayerType() {
		case gopacket.LayerTypePayload, gopacket.LayerTypeDecodeFailure, layers.LayerTypeSIP:
			continue
		}
		res.Layers = append(res.Layers, Layer{Name: l.LayerType().String(), Summary: describe(l)})
	}
	if el := pkt.ErrorLayer(); el != nil {
		res.Err = el.Error()
	}

	if app := pkt.ApplicationLayer(); app != nil && in.onSipPort(pkt.TransportLayer()) {
		if labels, err := in.sip.Labels(wholeMessage(app)); err == nil {
			res.Labels = labels
			res.Layers = append(res.Layers, Layer{Name: "SIP", Summary: sipSummary(labels)})
		}
	}
	return res
}

// wholeMessage rejoins headers and body when gopacket already split them.
func wholeMessage(app gopacket.ApplicationLayer) []byte {
	contents, payload := app.LayerContents(), app.LayerPayload()
	msg := make([]byte, 0, len(contents)+len(payload))
	msg = append(msg, contents...)
	return append(msg, payload...)
}

func (in *Inspector) onSipPort(tl gopacket.TransportLayer) bool {
	var src, dst uint16
	switch t := tl.(type) {
	case *layers.UDP:
		src, dst = uint16(t.SrcPort), uint16(t.DstPort)
	case *layers.TCP:
		src, dst = uint16(t.SrcPort), uint16(t.DstPort)
	default:
		return false
	}
	_, s := in.sipPorts[src]
	_, d := in.sipPorts[dst]
	return s || d
}

func describe(l gopacket.Layer) string {
	switch l := l.(type) {
	case *layers.Ethernet:
		return fmt.Sprintf("%s > %s %s", l.SrcMAC, l.DstMAC, l.EthernetType)
	case *layers.Dot1Q:
		return fmt.Sprintf("vlan %d %s", l.VLANIdentifier, l.Type)
	case *layers.IPv4:
		return fmt.Sprintf("%s > %s %s ttl %d len %d", l.SrcIP, l.DstIP, l.Protocol, l.TTL, l.Length)
	case *layers.IPv6:
		return fmt.Sprintf("%s > %s %s hlim %d len %d", l.SrcIP, l.DstIP, l.NextHeader, l.HopLimit, l.Length)
	case *layers.TCP:
		return fmt.Sprintf("%d > %d [%s] seq %d ack %d win %d", l.SrcPort, l.DstPort, tcpFlags(l), l.Seq, l.Ack, l.Window)
	case *layers.UDP:
		return fmt.Sprintf("%d > %d len %d", l.SrcPort, l.DstPort, l.Length)
	case *layers.ICMPv4:
		return l.TypeCode.String()
	case *layers.ICMPv6:
		return l.TypeCode.String()
	case *layers.DNS:
		return dnsSummary(l)
	}
	return ""
}

func tcpFlags(t *layers.TCP) string {
	var flags []string
	for _, f := range []struct {
		set  bool
		name string
	}{
		{t.SYN, "S"}, {t.FIN, "F"}, {t.RST, "R"}, {t.PSH, "P"}, {t.ACK, "."}, {t.URG, "U"},
	} {
		if f.set {
			flags = append(flags, f.name)
		}
	}
	return strings.Join(flags, "")
}

func dnsSummary(d *layers.DNS) string {
	if len(d.Questions) == 0 {
		return fmt.Sprintf("id %d", d.ID)
	}
	q := d.Questions[0]
	if d.QR {
		return fmt.Sprintf("id %d response %s %s answers %d", d.ID, q.Type, q.Name, len(d.Answers))
	}
	return fmt.Sprintf("id %d query %s %s", d.ID, q.Type, q.Name)
}
