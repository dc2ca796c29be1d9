package split

import (
	"errors"
	"io"
	"net/netip"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/unified2"
)

func entry(t *testing.T, id uint32) *unified2.Entry {
	t.Helper()
	e, err := unified2.NewEventEntry(core.TypeIDSEvent, &unified2.Event{
		EventID:       id,
		IPSource:      netip.MustParseAddr("10.0.0.1"),
		IPDestination: netip.MustParseAddr("10.0.0.2"),
	})
	require.NoError(t, err)
	return e
}

func eventIDs(t *testing.T, path string) []uint32 {
	t.Helper()
	r, err := unified2.OpenReader("stream", path)
	require.NoError(t, err)
	defer r.Close()

	var ids []uint32
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return ids
		}
		require.NoError(t, err)
		ev, ok := e.Event()
		require.True(t, ok)
		ids = append(ids, ev.EventID)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "unified2.log_00000", FileName("unified2.log", 0))
	assert.Equal(t, "out_00042", FileName("out", 42))
}

func TestSplitByCount(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "part")
	w := NewWriter("stream", prefix, 2)
	for id := uint32(1); id <= 5; id++ {
		require.NoError(t, w.WriteEntry(entry(t, id)))
	}
	require.NoError(t, w.Close())

	require.Equal(t, []string{prefix + "_00000", prefix + "_00001", prefix + "_00002"}, w.Files())
	assert.Equal(t, []uint32{1, 2}, eventIDs(t, w.Files()[0]))
	assert.Equal(t, []uint32{3, 4}, eventIDs(t, w.Files()[1]))
	assert.Equal(t, []uint32{5}, eventIDs(t, w.Files()[2]))
}

func TestSplitUnlimited(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "all")
	w := NewWriter("descriptor", prefix, 0)
	for id := uint32(1); id <= 3; id++ {
		require.NoError(t, w.WriteEntry(entry(t, id)))
	}
	require.NoError(t, w.Close())

	require.Len(t, w.Files(), 1)
	assert.Equal(t, []uint32{1, 2, 3}, eventIDs(t, w.Files()[0]))
}

func TestSplitNothingWritten(t *testing.T) {
	w := NewWriter("stream", filepath.Join(t.TempDir(), "none"), 10)
	require.NoError(t, w.Close())
	assert.Empty(t, w.Files())
}

func TestSplitBadBackend(t *testing.T) {
	w := NewWriter("memory", filepath.Join(t.TempDir(), "x"), 1)
	err := w.WriteEntry(entry(t, 1))
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}
