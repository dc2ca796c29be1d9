package unified2

import (
	"encoding/binary"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/source"
)

// record frames payload with a header declaring its exact length.
func record(t core.RecordType, payload []byte) []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(t))
	b = binary.BigEndian.AppendUint32(b, uint32(len(payload)))
	return append(b, payload...)
}

// ipv4EventPayload builds a type 7 payload by hand, field by field.
func ipv4EventPayload(sid uint32, src, dst [4]byte, proto uint8) []byte {
	var b []byte
	for _, v := range []uint32{1, 42, 1700000000, 500, sid, 1, 3, 2, 1} {
		b = binary.BigEndian.AppendUint32(b, v)
	}
	b = append(b, src[:]...)
	b = append(b, dst[:]...)
	b = binary.BigEndian.AppendUint16(b, 51000) // sport
	b = binary.BigEndian.AppendUint16(b, 80)    // dport
	b = append(b, proto, 0)
	b = binary.BigEndian.AppendUint16(b, 0)
	return b
}

func packetPayload(length uint32, data []byte) []byte {
	var b []byte
	for _, v := range []uint32{1, 42, 1700000000, 1700000001, 250, 1, length} {
		b = binary.BigEndian.AppendUint32(b, v)
	}
	return append(b, data...)
}

// twoRecordLog is an IPv4 event followed by its packet.
func twoRecordLog() []byte {
	b := record(core.TypeIDSEvent, ipv4EventPayload(10000, [4]byte{10, 0, 0, 1}, [4]byte{10, 0, 0, 2}, 6))
	return append(b, record(core.TypePacket, packetPayload(4, []byte{0xDE, 0xAD, 0xBE, 0xEF}))...)
}

func memReader(t *testing.T, b []byte) *Reader {
	t.Helper()
	src, err := source.OpenMemory(b)
	require.NoError(t, err)
	return NewReader(src)
}

func writeLog(t *testing.T, b []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unified2.log")
	require.NoError(t, os.WriteFile(path, b, 0644))
	return path
}

func sampleEvent(v6 bool) *Event {
	ev := &Event{
		SensorID:          3,
		EventID:           77,
		EventSecond:       1700000000,
		EventMicrosecond:  123456,
		SignatureID:       2019401,
		GeneratorID:       1,
		SignatureRevision: 4,
		ClassificationID:  9,
		PriorityID:        2,
		SportItype:        443,
		DportIcode:        61000,
		Protocol:          17,
		PacketAction:      1,
		Pad:               0x0102,
		MPLSLabel:         0xA0B0C0D0,
		VLANID:            100,
		PolicyID:          7,
	}
	if v6 {
		ev.IPSource = netip.MustParseAddr("2001:db8::1")
		ev.IPDestination = netip.MustParseAddr("fe80::abcd:1")
	} else {
		ev.IPSource = netip.MustParseAddr("192.168.1.10")
		ev.IPDestination = netip.MustParseAddr("8.8.8.8")
	}
	return ev
}

// mockSink lets a test decide how each write behaves.
type mockSink struct {
	mock.Mock
}

func (m *mockSink) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockSink) Close() error {
	return m.Called().Error(0)
}

func (m *mockSink) Name() string { return "mock" }
