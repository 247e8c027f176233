package binpickle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lkpy/binpickle-go/codec"
	"github.com/lkpy/binpickle-go/digest"
	"github.com/lkpy/binpickle-go/frame"
	"github.com/lkpy/binpickle-go/index"
)

func writeTestFile(t *testing.T, buffers [][]byte, chains [][]codec.ChainEntry, align bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.bpk")

	w, err := Create(path)
	require.NoError(t, err)

	for i, b := range buffers {
		var chain []codec.ChainEntry
		if chains != nil {
			chain = chains[i]
		}
		require.NoError(t, w.WriteBuffer(b, chain, nil, align))
	}

	_, err = w.Finalize()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return path
}

func TestReaderMappedEmptyChainIsZeroCopy(t *testing.T) {
	data := []byte("mapped buffer contents")
	path := writeTestFile(t, [][]byte{data}, nil, true)

	r, err := Open(path, true)
	require.NoError(t, err)
	defer r.Close()

	view, err := r.GetBuffer(0)
	require.NoError(t, err)
	defer view.Release()

	assert.Equal(t, data, view.Data)
	assert.True(t, &view.Data[0] == &r.mapping.Bytes()[r.Entries()[0].Offset], "view should point into the mapping")
}

func TestReaderMappedCompressedBufferFallsBackToEager(t *testing.T) {
	data := []byte("this buffer has a non-empty codec chain in mapped mode")
	path := writeTestFile(t, [][]byte{data}, [][]codec.ChainEntry{{{ID: "zstd"}}}, true)

	r, err := Open(path, true)
	require.NoError(t, err)
	defer r.Close()

	view, err := r.GetBuffer(0)
	require.NoError(t, err)
	assert.Equal(t, data, view.Data)
	view.Release() // no-op, but must not panic
}

func TestReaderCloseRefusesWhileViewsLive(t *testing.T) {
	data := []byte("held open")
	path := writeTestFile(t, [][]byte{data}, nil, true)

	r, err := Open(path, true)
	require.NoError(t, err)

	view, err := r.GetBuffer(0)
	require.NoError(t, err)

	err = r.Close()
	require.True(t, errors.Is(err, ErrBuffersStillLive))

	view.Release()
	require.NoError(t, r.Close())
}

func TestReaderEagerModeAlwaysCopies(t *testing.T) {
	data := []byte("eager mode buffer")
	path := writeTestFile(t, [][]byte{data}, nil, false)

	r, err := Open(path, false)
	require.NoError(t, err)
	defer r.Close()

	view, err := r.GetBuffer(0)
	require.NoError(t, err)
	assert.Equal(t, data, view.Data)
	assert.Nil(t, view.token, "eager views are owned copies with no mapping token")
	view.Release()
}

func TestReaderDetectsCorruptBuffer(t *testing.T) {
	data := []byte("some bytes to corrupt")
	path := writeTestFile(t, [][]byte{data}, nil, false)

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{'X'}, frame.HeaderSize)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := Open(path, false)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.GetBuffer(0)
	require.True(t, errors.Is(err, ErrCorruptBuffer))
}

func TestReaderRejectsBadMagic(t *testing.T) {
	path := writeTestFile(t, [][]byte{[]byte("x")}, nil, false)

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{'X'}, 0)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = Open(path, false)
	require.True(t, errors.Is(err, ErrMalformedFrame))
}

func TestReaderRejectsShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bpk")
	require.NoError(t, os.WriteFile(path, []byte("too short"), 0o644))

	_, err := Open(path, false)
	require.True(t, errors.Is(err, ErrMalformedFrame))
}

func TestReaderGetBufferOutOfRange(t *testing.T) {
	path := writeTestFile(t, [][]byte{[]byte("x")}, nil, false)

	r, err := Open(path, false)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.GetBuffer(5)
	require.Error(t, err)
}

func TestReaderEntriesPreserveWriteOrder(t *testing.T) {
	buffers := [][]byte{[]byte("a"), []byte("bb"), []byte("ccc")}
	path := writeTestFile(t, buffers, nil, false)

	r, err := Open(path, false)
	require.NoError(t, err)
	defer r.Close()

	entries := r.Entries()
	require.Len(t, entries, 3)
	for i := range buffers {
		assert.Equal(t, uint64(len(buffers[i])), entries[i].DecLength)
	}
}

// rewriteIndex decodes the file's index, applies mutate to it, and writes
// the mutated index plus a freshly computed trailer back in place, so
// tests can exercise Open's per-entry validation against a hand-crafted
// index that the Writer itself would never produce.
func rewriteIndex(t *testing.T, path string, mutate func([]index.Entry) []index.Entry) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)
	size := info.Size()

	trailerBytes := make([]byte, frame.TrailerSize)
	_, err = f.ReadAt(trailerBytes, size-frame.TrailerSize)
	require.NoError(t, err)
	trailer, err := frame.ParseTrailer(trailerBytes)
	require.NoError(t, err)

	indexBytes := make([]byte, trailer.IndexLength)
	_, err = f.ReadAt(indexBytes, int64(trailer.IndexOffset))
	require.NoError(t, err)

	entries, err := index.Decode(indexBytes)
	require.NoError(t, err)

	entries = mutate(entries)

	newIndexBytes, err := index.Encode(entries)
	require.NoError(t, err)

	newTrailer := frame.Trailer{
		IndexOffset: trailer.IndexOffset,
		IndexLength: uint32(len(newIndexBytes)),
		IndexHash:   digest.Sum256(newIndexBytes),
	}

	require.NoError(t, f.Truncate(int64(trailer.IndexOffset)))
	_, err = f.WriteAt(newIndexBytes, int64(trailer.IndexOffset))
	require.NoError(t, err)
	_, err = f.WriteAt(newTrailer.Bytes(), int64(trailer.IndexOffset)+int64(len(newIndexBytes)))
	require.NoError(t, err)
}

func TestReaderRejectsOverlappingEntries(t *testing.T) {
	path := writeTestFile(t, [][]byte{[]byte("first1234"), []byte("second567")}, nil, false)

	rewriteIndex(t, path, func(entries []index.Entry) []index.Entry {
		require.Len(t, entries, 2)
		entries[1].Offset = entries[0].Offset
		return entries
	})

	_, err := Open(path, false)
	require.True(t, errors.Is(err, ErrCorruptIndex))
}

func TestReaderRejectsOutOfOrderEntries(t *testing.T) {
	path := writeTestFile(t, [][]byte{[]byte("first1234"), []byte("second567")}, nil, false)

	rewriteIndex(t, path, func(entries []index.Entry) []index.Entry {
		require.Len(t, entries, 2)
		entries[0], entries[1] = entries[1], entries[0]
		return entries
	})

	_, err := Open(path, false)
	require.True(t, errors.Is(err, ErrCorruptIndex))
}

func TestReaderDetectsCorruptIndexHash(t *testing.T) {
	path := writeTestFile(t, [][]byte{[]byte("x")}, nil, false)

	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	require.NoError(t, err)

	info, err := f.Stat()
	require.NoError(t, err)
	hashOffset := info.Size() - int64(frame.IndexHashSize)

	b := make([]byte, 1)
	_, err = f.ReadAt(b, hashOffset)
	require.NoError(t, err)
	b[0] ^= 0x01
	_, err = f.WriteAt(b, hashOffset)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = Open(path, false)
	require.True(t, errors.Is(err, ErrCorruptIndex))
}

func TestReaderCompressedZeroBufferShrinks(t *testing.T) {
	data := make([]byte, 10000)
	path := writeTestFile(t, [][]byte{data}, [][]codec.ChainEntry{{{ID: "zstd"}}}, false)

	r, err := Open(path, false)
	require.NoError(t, err)
	defer r.Close()

	entries := r.Entries()
	require.Len(t, entries, 1)
	assert.Less(t, entries[0].EncLength, entries[0].DecLength)

	view, err := r.GetBuffer(0)
	require.NoError(t, err)
	assert.Equal(t, data, view.Data)
}
