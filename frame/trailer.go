package frame

import (
	"fmt"

	"github.com/lkpy/binpickle-go/errs"
	"github.com/lkpy/binpickle-go/internal/endian"
)

// TrailerSize is the fixed byte length of a FileTrailer: 8 (index_offset)
// + 4 (index_length) + 32 (index_hash) = 44.
const TrailerSize = 44

// IndexHashSize is the byte length of the trailer's index_hash field, a
// SHA-256 digest of the raw index bytes.
const IndexHashSize = 32

// Trailer is the fixed-size section at the end of a container file,
// pointing at and authenticating the index that precedes it.
type Trailer struct {
	// IndexOffset is the byte offset, from the start of the file, of the
	// first byte of the msgpack-encoded index.
	IndexOffset uint64
	// IndexLength is the byte length of the msgpack-encoded index.
	IndexLength uint32
	// IndexHash is the SHA-256 digest of the raw index bytes.
	IndexHash [IndexHashSize]byte
}

// Bytes serializes the trailer into a TrailerSize-byte little-endian slice.
func (t Trailer) Bytes() []byte {
	b := make([]byte, TrailerSize)
	engine := endian.LittleEndian
	engine.PutUint64(b[0:8], t.IndexOffset)
	engine.PutUint32(b[8:12], t.IndexLength)
	copy(b[12:44], t.IndexHash[:])
	return b
}

// ParseTrailer parses a Trailer from data, which must be exactly
// TrailerSize bytes.
func ParseTrailer(data []byte) (Trailer, error) {
	if len(data) != TrailerSize {
		return Trailer{}, fmt.Errorf("%w: trailer requires %d bytes, got %d", errs.ErrMalformedFrame, TrailerSize, len(data))
	}

	var t Trailer
	engine := endian.LittleEndian
	t.IndexOffset = engine.Uint64(data[0:8])
	t.IndexLength = engine.Uint32(data[8:12])
	copy(t.IndexHash[:], data[12:44])

	return t, nil
}
