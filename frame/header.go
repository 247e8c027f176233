// Package frame implements the fixed-width FileHeader and FileTrailer
// that bracket a BinPickle container: the header at byte 0 and the
// trailer at the end of the file, with the buffer payload region and the
// msgpack-encoded index in between.
package frame

import (
	"fmt"

	"github.com/lkpy/binpickle-go/errs"
	"github.com/lkpy/binpickle-go/internal/endian"
)

// HeaderSize is the fixed byte length of a FileHeader.
const HeaderSize = 16

// Magic is the 4-byte value every BinPickle file starts with.
var Magic = [4]byte{'B', 'P', 'C', 'K'}

// Version is the on-disk format version this package reads and writes.
const Version uint16 = 2

// Header is the fixed-size section at byte offset 0 of a container file.
type Header struct {
	// Magic must equal Magic for the file to be recognized as BinPickle.
	Magic [4]byte // byte offset 0-3
	// Version is the format revision. Only Version is currently supported.
	Version uint16 // byte offset 4-5
	// Reserved must be zero; future revisions may repurpose it.
	Reserved uint16 // byte offset 6-7
	// PayloadLength is the byte length of the buffer payload region that
	// immediately follows the header.
	PayloadLength uint64 // byte offset 8-15
}

// NewHeader creates a Header for payloadLength bytes of buffer data, using
// the current Magic and Version.
func NewHeader(payloadLength uint64) Header {
	return Header{
		Magic:         Magic,
		Version:       Version,
		Reserved:      0,
		PayloadLength: payloadLength,
	}
}

// Bytes serializes the header into a HeaderSize-byte little-endian slice.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := endian.LittleEndian
	copy(b[0:4], h.Magic[:])
	engine.PutUint16(b[4:6], h.Version)
	engine.PutUint16(b[6:8], h.Reserved)
	engine.PutUint64(b[8:16], h.PayloadLength)
	return b
}

// ParseHeader parses a Header from data, which must be at least HeaderSize
// bytes. It returns ErrMalformedFrame for a short buffer, bad magic, or a
// nonzero reserved field, and ErrUnsupportedVersion for a recognized but
// unsupported version.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header requires %d bytes, got %d", errs.ErrMalformedFrame, HeaderSize, len(data))
	}

	var h Header
	copy(h.Magic[:], data[0:4])
	if h.Magic != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", errs.ErrMalformedFrame, h.Magic[:])
	}

	engine := endian.LittleEndian
	h.Version = engine.Uint16(data[4:6])
	h.Reserved = engine.Uint16(data[6:8])
	if h.Reserved != 0 {
		return Header{}, fmt.Errorf("%w: reserved field must be zero, got %d", errs.ErrMalformedFrame, h.Reserved)
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: version %d", errs.ErrUnsupportedVersion, h.Version)
	}

	h.PayloadLength = engine.Uint64(data[8:16])

	return h, nil
}
