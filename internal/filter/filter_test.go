package filter

import (
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/u2kit/internal/config"
	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/unified2"
)

func tcpFrame(t *testing.T, dstPort layers.TCPPort) []byte {
	t.Helper()
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
		DstMAC:       net.HardwareAddr{6, 7, 8, 9, 10, 11},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    net.IP{10, 0, 0, 1},
		DstIP:    net.IP{10, 0, 0, 2},
	}
	tcp := &layers.TCP{SrcPort: 51000, DstPort: dstPort, SYN: true, Window: 1024}
	require.NoError(t, tcp.SetNetworkLayerForChecksum(ip))

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	require.NoError(t, gopacket.SerializeLayers(buf, opts, eth, ip, tcp, gopacket.Payload("hello")))
	return buf.Bytes()
}

func eventEntry(sensor, id, sid uint32) *unified2.Entry {
	e, _ := unified2.NewEventEntry(core.TypeIDSEvent, &unified2.Event{SensorID: sensor, EventID: id, SignatureID: sid})
	return e
}

func packetEntry(sensor, id uint32, data []byte) *unified2.Entry {
	return unified2.NewPacketEntry(&unified2.Packet{
		SensorID: sensor,
		EventID:  id,
		LinkType: uint32(layers.LinkTypeEthernet),
		Data:     data,
	})
}

func run(filters []Filter, entries ...*unified2.Entry) []*unified2.Entry {
	var out []*unified2.Entry
	chain := NewFilterChain(func(e *unified2.Entry) { out = append(out, e) }, filters)
	for _, e := range entries {
		chain.Filter(e)
	}
	return out
}

func TestEmptyChainPassesEverything(t *testing.T) {
	in := []*unified2.Entry{eventEntry(1, 1, 1), packetEntry(1, 1, nil)}
	assert.Equal(t, in, run(nil, in...))
}

func TestChainOrder(t *testing.T) {
	before, after := NewCounterFilter(), NewCounterFilter()
	filters := []Filter{before, NewTypeFilter(core.TypePacket), after}
	out := run(filters, eventEntry(1, 1, 1), packetEntry(1, 1, nil), eventEntry(1, 2, 1))

	assert.Len(t, out, 1)
	assert.Equal(t, 3, before.GetCount())
	assert.Equal(t, 1, after.GetCount())
	assert.Equal(t, map[core.RecordType]int{core.TypeIDSEvent: 2, core.TypePacket: 1}, before.Counts())
	assert.Len(t, NewFilterChain(nil, filters).GetFilters(), 3)
}

func TestSignatureFilterKeepsRelatedPackets(t *testing.T) {
	out := run([]Filter{NewSignatureFilter(10000)},
		eventEntry(1, 1, 10000),
		packetEntry(1, 1, nil),
		eventEntry(1, 2, 2000),
		packetEntry(1, 2, nil),
		packetEntry(2, 1, nil), // other sensor
		eventEntry(1, 1, 3000), // event id reused by a different signature
		packetEntry(1, 1, nil),
	)
	require.Len(t, out, 2)
	assert.Equal(t, core.TypeIDSEvent, out[0].Header.Type)
	p, ok := out[1].Packet()
	require.True(t, ok)
	assert.EqualValues(t, 1, p.EventID)
}

func TestSignatureAndTypeFromConfig(t *testing.T) {
	filters, err := FromConfig(config.FilterConfig{
		Types: []string{"packet"},
		SIDs:  []uint32{10000},
	})
	require.NoError(t, err)

	out := run(filters,
		eventEntry(1, 1, 10000),
		packetEntry(1, 1, nil),
		eventEntry(1, 2, 2000),
		packetEntry(1, 2, nil),
	)
	require.Len(t, out, 1, "only the packet of the matching event survives")
	p, ok := out[0].Packet()
	require.True(t, ok)
	assert.EqualValues(t, 1, p.EventID)
}

func TestBPFFilter(t *testing.T) {
	f, err := NewBPFFilter("tcp dst port 80")
	require.NoError(t, err)

	web := tcpFrame(t, 80)
	ssh := tcpFrame(t, 22)
	assert.True(t, f.Match(packetEntry(1, 1, web).Record.(*unified2.Packet)))
	assert.False(t, f.Match(packetEntry(1, 1, ssh).Record.(*unified2.Packet)))
	assert.False(t, f.Match(packetEntry(1, 1, nil).Record.(*unified2.Packet)))

	out := run([]Filter{f}, eventEntry(1, 1, 1), packetEntry(1, 1, web), packetEntry(1, 2, ssh))
	assert.Len(t, out, 2, "events pass, only the port 80 packet survives")
}

func TestBPFFilterInvalidExpression(t *testing.T) {
	_, err := NewBPFFilter("tcp port")
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	filters, err := FromConfig(config.FilterConfig{
		Types: []string{"packet", "7"},
		SIDs:  []uint32{10000},
		BPF:   "tcp",
	})
	require.NoError(t, err)
	require.Len(t, filters, 3)
	assert.IsType(t, &SignatureFilter{}, filters[0])
	assert.IsType(t, &TypeFilter{}, filters[1])
	assert.IsType(t, &BPFFilter{}, filters[2])

	_, err = FromConfig(config.FilterConfig{Types: []string{"bogus"}})
	assert.ErrorIs(t, err, core.ErrConfigInvalid)

	_, err = FromConfig(config.FilterConfig{BPF: "not a filter ("})
	assert.ErrorIs(t, err, core.ErrConfigInvalid)

	filters, err = FromConfig(config.FilterConfig{})
	require.NoError(t, err)
	assert.Empty(t, filters)
}
