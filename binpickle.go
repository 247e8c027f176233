// Package binpickle reads and writes BinPickle container files: a
// simple, page-aligned binary format for persisting a sequence of large,
// heterogeneous in-memory buffers alongside a self-describing index.
//
// # Core features
//
//   - Fixed 16-byte header and 44-byte trailer bracketing a buffer
//     payload region and a msgpack-encoded index.
//   - Per-buffer codec chains (none, zstd, s2, lz4, or a caller-supplied
//     Registry) applied at write time and reversed at read time.
//   - SHA-256 digests over both the index and every stored buffer,
//     verified on read.
//   - Two read modes: eager (owned, decoded copies) and mapped
//     (zero-copy views into a read-only mmap, for buffers stored with an
//     empty codec chain).
//
// # Basic usage
//
//	w, _ := binpickle.Create("out.bpk")
//	_ = w.WriteBuffer(data, nil, map[string]any{"dtype": "float64"}, true)
//	_, _ = w.Finalize()
//	_ = w.Close()
//
//	r, _ := binpickle.Open("out.bpk", true)
//	defer r.Close()
//	view, _ := r.GetBuffer(0)
//	defer view.Release()
//	use(view.Data)
//
// # Package structure
//
// The on-disk framing lives in frame, the codec registry and chain
// composition in codec, the streaming digest in digest, the index
// (de)serialization in index, and the mapped-view lifetime accounting in
// mmapgov. This package wires those leaves together into Writer and
// Reader.
package binpickle

import "os"

// pageSize is the host page size used for write_buffer's alignment
// contract; queried once since it does not change for the process
// lifetime.
var pageSize = os.Getpagesize()
