package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkpy/binpickle-go/codec"
)

func sampleEntries() []Entry {
	var h1, h2 [32]byte
	for i := range h1 {
		h1[i] = byte(i)
		h2[i] = byte(255 - i)
	}

	return []Entry{
		{
			Offset:    16,
			EncLength: 100,
			DecLength: 100,
			Hash:      h1,
			Codecs:    nil,
			Info:      map[string]any{"dtype": "float64", "shape": []any{10, 10}},
		},
		{
			Offset:    200,
			EncLength: 40,
			DecLength: 100,
			Hash:      h2,
			Codecs:    []codec.ChainEntry{{ID: "zstd", Config: map[string]any{"level": "default"}}},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	entries := sampleEntries()

	b, err := Encode(entries)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, entries[0].Offset, got[0].Offset)
	assert.Equal(t, entries[0].Hash, got[0].Hash)
	assert.Equal(t, entries[0].Info["dtype"], got[0].Info["dtype"])
	assert.Equal(t, entries[1].Codecs[0].ID, got[1].Codecs[0].ID)
}

func TestEncodeEmptySlice(t *testing.T) {
	b, err := Encode(nil)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeCorruptBytes(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}

func TestDecodeZeroHashRoundTrips(t *testing.T) {
	entries := sampleEntries()
	entries[0].Hash = [32]byte{}

	b, err := Encode(entries)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, [32]byte{}, got[0].Hash)
}
