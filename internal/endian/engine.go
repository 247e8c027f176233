// Package endian supplies the single byte-order engine BinPickle's frame
// layout uses. The container format has no per-file byte-order flag, so
// unlike a general-purpose binary toolkit this package only ever hands
// out the little-endian engine.
package endian

import "encoding/binary"

// Engine combines ByteOrder and AppendByteOrder, matching binary.LittleEndian.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// LittleEndian is the engine used for every multi-byte field in a
// BinPickle file.
var LittleEndian Engine = binary.LittleEndian
