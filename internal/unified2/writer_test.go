package unified2

import (
	"bytes"
	"math"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/metrics"
	"firestige.xyz/u2kit/internal/source"
)

func TestRewriteIsByteExact(t *testing.T) {
	var in []byte
	in = append(in, twoRecordLog()...)
	for _, typ := range []core.RecordType{core.TypeIDSEventV2, core.TypeIDSEventIPv6, core.TypeIDSEventIPv6V2} {
		b, err := AppendEvent(nil, typ, sampleEvent(typ.IsIPv6()))
		require.NoError(t, err)
		in = append(in, record(typ, b)...)
	}
	in = append(in, record(core.TypePacket, packetPayload(0, nil))...)

	sink := source.NewMemorySink()
	w := NewWriter(sink)
	r := memReader(t, in)
	var e Entry
	for {
		err := r.NextInto(&e)
		if err != nil {
			break
		}
		require.NoError(t, w.WriteEntry(&e))
	}
	require.NoError(t, w.Close())
	assert.Equal(t, in, sink.Bytes())
}

func TestWriteThenReadEveryShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.u2")
	for _, backend := range source.SinkNames() {
		t.Run(backend, func(t *testing.T) {
			w, err := CreateWriter(backend, path, false)
			require.NoError(t, err)

			var want []*Entry
			for _, typ := range []core.RecordType{core.TypeIDSEvent, core.TypeIDSEventV2, core.TypeIDSEventIPv6, core.TypeIDSEventIPv6V2} {
				ev := sampleEvent(typ.IsIPv6())
				if !typ.IsV2() {
					ev.MPLSLabel, ev.VLANID, ev.PolicyID = 0, 0, 0
				}
				e, err := NewEventEntry(typ, ev)
				require.NoError(t, err)
				want = append(want, e)
			}
			want = append(want, NewPacketEntry(&Packet{SensorID: 3, EventID: 77, LinkType: 1, Data: []byte("payload")}))

			for _, e := range want {
				require.NoError(t, w.WriteEntry(e))
			}
			require.NoError(t, w.Close())

			r, err := OpenReader("stream", path)
			require.NoError(t, err)
			defer r.Close()
			for _, e := range want {
				got, err := r.Next()
				require.NoError(t, err)
				assert.Equal(t, e, got)
			}
		})
	}
}

func TestAppendMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "append.u2")
	e, err := NewEventEntry(core.TypeIDSEvent, sampleEvent(false))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		w, err := CreateWriter("descriptor", path, true)
		require.NoError(t, err)
		require.NoError(t, w.WriteEntry(e))
		require.NoError(t, w.Close())
	}
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 2*(HeaderSize+EventSize), fi.Size())
}

func TestLengthWrittenAsIs(t *testing.T) {
	e := &Entry{Header: Header{Type: core.TypeIDSEvent, Length: 999}, Record: sampleEvent(false)}
	sink := source.NewMemorySink()
	require.NoError(t, NewWriter(sink).WriteEntry(e))

	h, err := ParseHeader(sink.Bytes())
	require.NoError(t, err)
	assert.EqualValues(t, 999, h.Length)
	assert.Len(t, sink.Bytes(), HeaderSize+EventSize)
}

func TestWriteRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry *Entry
		want  error
	}{
		{"unknown type", &Entry{Header: Header{Type: core.TypeExtraData}, Record: &Packet{}}, core.ErrInvalidEntry},
		{"event header with packet", &Entry{Header: Header{Type: core.TypeIDSEvent}, Record: &Packet{}}, core.ErrInvalidEntry},
		{"packet header with event", &Entry{Header: Header{Type: core.TypePacket}, Record: &Event{}}, core.ErrInvalidEntry},
		{"empty entry", &Entry{}, core.ErrInvalidEntry},
		{"packet length mismatch", &Entry{Header: Header{Type: core.TypePacket, Length: 30}, Record: &Packet{PacketLength: 3, Data: []byte{1}}}, core.ErrInvalidEntry},
		{"ipv6 address in ipv4 shape", &Entry{Header: Header{Type: core.TypeIDSEventV2, Length: EventV2Size}, Record: sampleEvent(true)}, core.ErrAddressFamily},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := source.NewMemorySink()
			err := NewWriter(sink).WriteEntry(tt.entry)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, sink.Bytes(), "nothing may reach the sink")
		})
	}
}

func TestWriteFailsOnShortWrite(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*mockSink)
	}{
		{"header", func(m *mockSink) {
			m.On("Write", mock.Anything).Return(3, nil).Once()
		}},
		{"payload", func(m *mockSink) {
			m.On("Write", mock.Anything).Return(HeaderSize, nil).Once()
			m.On("Write", mock.Anything).Return(0, assert.AnError).Once()
		}},
		{"packet data", func(m *mockSink) {
			m.On("Write", mock.Anything).Return(HeaderSize, nil).Once()
			m.On("Write", mock.Anything).Return(PacketHeaderSize, nil).Once()
			m.On("Write", mock.Anything).Return(1, nil).Once()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := new(mockSink)
			tt.setup(sink)
			e := NewPacketEntry(&Packet{Data: []byte{1, 2, 3, 4}})
			err := NewWriter(sink).WriteEntry(e)
			assert.ErrorIs(t, err, core.ErrIO)
			sink.AssertExpectations(t)
		})
	}
}

func TestWriteCountsRecords(t *testing.T) {
	before := testutil.ToFloat64(metrics.RecordsWrittenTotal.WithLabelValues("packet"))
	e := NewPacketEntry(&Packet{Data: []byte{9}})
	require.NoError(t, NewWriter(source.NewMemorySink()).WriteEntry(e))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RecordsWrittenTotal.WithLabelValues("packet")))
}

func TestNewEntries(t *testing.T) {
	_, err := NewEventEntry(core.TypePacket, &Event{})
	assert.ErrorIs(t, err, core.ErrInvalidEntry)

	p := &Packet{PacketLength: 99, Data: []byte{1, 2, 3}}
	e := NewPacketEntry(p)
	assert.EqualValues(t, 3, p.PacketLength)
	assert.EqualValues(t, PacketHeaderSize+3, e.Header.Length)
	require.NoError(t, e.Validate())

	e.Reset()
	assert.True(t, e.Empty())
	assert.Error(t, e.Validate())

	var buf bytes.Buffer
	assert.Error(t, NewWriter(&nopSink{&buf}).WriteEntry(e))
}

type nopSink struct{ *bytes.Buffer }

func (nopSink) Close() error { return nil }
func (nopSink) Name() string { return "buffer" }

func boundaryEvent(typ core.RecordType, full bool) *Event {
	if !full {
		ev := &Event{IPSource: netip.IPv4Unspecified(), IPDestination: netip.IPv4Unspecified()}
		if typ.IsIPv6() {
			ev.IPSource, ev.IPDestination = netip.IPv6Unspecified(), netip.IPv6Unspecified()
		}
		return ev
	}
	addr := netip.MustParseAddr("255.255.255.255")
	if typ.IsIPv6() {
		addr = netip.MustParseAddr("ffff:ffff:ffff:ffff:ffff:ffff:ffff:ffff")
	}
	ev := &Event{
		SensorID:          math.MaxUint32,
		EventID:           math.MaxUint32,
		EventSecond:       math.MaxUint32,
		EventMicrosecond:  math.MaxUint32,
		SignatureID:       math.MaxUint32,
		GeneratorID:       math.MaxUint32,
		SignatureRevision: math.MaxUint32,
		ClassificationID:  math.MaxUint32,
		PriorityID:        math.MaxUint32,
		IPSource:          addr,
		IPDestination:     addr,
		SportItype:        math.MaxUint16,
		DportIcode:        math.MaxUint16,
		Protocol:          math.MaxUint8,
		PacketAction:      math.MaxUint8,
		Pad:               math.MaxUint16,
	}
	if typ.IsV2() {
		ev.MPLSLabel, ev.VLANID, ev.PolicyID = math.MaxUint32, math.MaxUint16, math.MaxUint16
	}
	return ev
}

func TestBoundaryValuesRoundTrip(t *testing.T) {
	type testCase struct {
		name  string
		entry func(t *testing.T) *Entry
		wire  byte // value of every event payload byte
	}
	var tests []testCase
	for _, typ := range []core.RecordType{core.TypeIDSEvent, core.TypeIDSEventV2, core.TypeIDSEventIPv6, core.TypeIDSEventIPv6V2} {
		for _, full := range []bool{false, true} {
			typ, full := typ, full
			name, wire := typ.String()+"/zero", byte(0)
			if full {
				name, wire = typ.String()+"/max", 0xFF
			}
			tests = append(tests, testCase{name, func(t *testing.T) *Entry {
				e, err := NewEventEntry(typ, boundaryEvent(typ, full))
				require.NoError(t, err)
				return e
			}, wire})
		}
	}
	tests = append(tests,
		testCase{"packet/zero", func(*testing.T) *Entry {
			return NewPacketEntry(&Packet{Data: []byte{}})
		}, 0},
		testCase{"packet/max", func(*testing.T) *Entry {
			return NewPacketEntry(&Packet{
				SensorID:          math.MaxUint32,
				EventID:           math.MaxUint32,
				EventSecond:       math.MaxUint32,
				PacketSecond:      math.MaxUint32,
				PacketMicrosecond: math.MaxUint32,
				LinkType:          math.MaxUint32,
				Data:              bytes.Repeat([]byte{0xFF}, 255),
			})
		}, 0xFF},
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.entry(t)
			sink := source.NewMemorySink()
			w := NewWriter(sink)
			require.NoError(t, w.WriteEntry(want))
			require.NoError(t, w.Close())

			b := sink.Bytes()
			require.Len(t, b, HeaderSize+int(want.Header.Length))
			if _, ok := want.Packet(); !ok {
				assert.Equal(t, bytes.Repeat([]byte{tt.wire}, int(want.Header.Length)), b[HeaderSize:])
			}

			got, err := memReader(t, b).Next()
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}
