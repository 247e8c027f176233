package binpickle

import (
	"fmt"
	"os"

	"github.com/lkpy/binpickle-go/codec"
	"github.com/lkpy/binpickle-go/digest"
	"github.com/lkpy/binpickle-go/errs"
	"github.com/lkpy/binpickle-go/frame"
	"github.com/lkpy/binpickle-go/index"
	"github.com/lkpy/binpickle-go/internal/mmapfile"
	"github.com/lkpy/binpickle-go/internal/pool"
	"github.com/lkpy/binpickle-go/mmapgov"
)

// BufferView is the result of Reader.GetBuffer: the decoded buffer bytes
// plus, in mapped mode, the token that keeps the reader's mapping alive
// on the caller's behalf. Release must be called exactly once when the
// caller is done with Data; in eager mode Release is a harmless no-op.
type BufferView struct {
	Data  []byte
	token *mmapgov.Token
}

// Release drops the mapped-view token, if any, this view was vended
// with. The Go runtime has no destructors, so this is the caller's
// responsibility — Data must not be read after Release if it came from a
// mapped view.
func (v BufferView) Release() {
	if v.token != nil {
		v.token.Release()
	}
}

// Reader opens a BinPickle file for reading, either eagerly (every
// buffer is copied out and decoded on request) or in mapped mode (a
// single read-only mapping backs zero-copy views for buffers stored with
// an empty codec chain).
type Reader struct {
	f        *os.File
	direct   bool
	registry codec.Registry

	header  frame.Header
	trailer frame.Trailer
	entries []index.Entry

	mapping *mmapfile.File
	gov     mmapgov.Governor

	closed bool
}

// Open opens path and validates its header, trailer and index before
// returning. direct selects mapped mode; false selects eager mode.
func Open(path string, direct bool) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", errs.ErrIOError, path, err)
	}

	r, err := newReaderFromFile(f, direct)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return r, nil
}

func newReaderFromFile(f *os.File, direct bool) (*Reader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: stat: %v", errs.ErrIOError, err)
	}

	size := info.Size()
	if size < frame.HeaderSize+frame.TrailerSize {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", errs.ErrMalformedFrame, size)
	}

	headerBytes := make([]byte, frame.HeaderSize)
	if _, err := f.ReadAt(headerBytes, 0); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", errs.ErrIOError, err)
	}
	header, err := frame.ParseHeader(headerBytes)
	if err != nil {
		return nil, err
	}

	trailerBytes := make([]byte, frame.TrailerSize)
	if _, err := f.ReadAt(trailerBytes, size-frame.TrailerSize); err != nil {
		return nil, fmt.Errorf("%w: read trailer: %v", errs.ErrIOError, err)
	}
	trailer, err := frame.ParseTrailer(trailerBytes)
	if err != nil {
		return nil, err
	}

	if trailer.IndexOffset+uint64(trailer.IndexLength)+frame.TrailerSize != uint64(size) {
		return nil, fmt.Errorf("%w: index_offset+index_length+trailer does not match file length", errs.ErrMalformedFrame)
	}

	indexBytes := make([]byte, trailer.IndexLength)
	if _, err := f.ReadAt(indexBytes, int64(trailer.IndexOffset)); err != nil {
		return nil, fmt.Errorf("%w: read index: %v", errs.ErrIOError, err)
	}

	if digest.Sum256(indexBytes) != trailer.IndexHash {
		return nil, fmt.Errorf("%w: index digest mismatch", errs.ErrCorruptIndex)
	}

	entries, err := index.Decode(indexBytes)
	if err != nil {
		return nil, err
	}

	if err := validateEntries(entries, trailer.IndexOffset); err != nil {
		return nil, err
	}

	r := &Reader{
		f:        f,
		direct:   direct,
		registry: codec.NewBuiltinRegistry(),
		header:   header,
		trailer:  trailer,
		entries:  entries,
	}

	if direct {
		mapping, err := mmapfile.Open(f)
		if err != nil {
			return nil, err
		}
		r.mapping = mapping
	}

	return r, nil
}

// validateEntries checks the index against the invariants every entry
// must satisfy: each entry's stored bytes fall entirely within the
// payload region (invariant 1), and entries are laid out in
// non-overlapping, monotonically increasing offset order (invariant 4),
// which write order guarantees and a hand-crafted or corrupted index
// might not.
func validateEntries(entries []index.Entry, indexOffset uint64) error {
	for i, e := range entries {
		if e.Offset < frame.HeaderSize {
			return fmt.Errorf("%w: entry %d starts inside the header", errs.ErrCorruptIndex, i)
		}
		if e.Offset+e.EncLength > indexOffset {
			return fmt.Errorf("%w: entry %d extends into the index region", errs.ErrCorruptIndex, i)
		}
		if i > 0 {
			prev := entries[i-1]
			if prev.Offset+prev.EncLength > e.Offset {
				return fmt.Errorf("%w: entry %d overlaps or precedes entry %d", errs.ErrCorruptIndex, i-1, i)
			}
		}
	}
	return nil
}

// Entries returns a copy of the decoded index, in write order.
func (r *Reader) Entries() []index.Entry {
	return append([]index.Entry(nil), r.entries...)
}

// GetBuffer returns the i-th buffer's decoded bytes. In mapped mode, a
// buffer stored with an empty codec chain is returned as a zero-copy
// view into the reader's mapping and the caller must call Release on the
// returned BufferView; every other case (eager mode, or a mapped reader
// with a non-empty codec chain) returns an owned copy with a no-op
// Release.
func (r *Reader) GetBuffer(i int) (BufferView, error) {
	if r.closed {
		return BufferView{}, errs.ErrClosed
	}
	if i < 0 || i >= len(r.entries) {
		return BufferView{}, fmt.Errorf("binpickle: buffer index %d out of range [0,%d)", i, len(r.entries))
	}
	entry := r.entries[i]

	if r.direct && len(entry.Codecs) == 0 {
		return r.getMappedBuffer(entry)
	}

	return r.getEagerBuffer(entry)
}

func (r *Reader) getMappedBuffer(entry index.Entry) (BufferView, error) {
	view, err := r.mapping.Slice(int(entry.Offset), int(entry.EncLength))
	if err != nil {
		return BufferView{}, fmt.Errorf("%w: %v", errs.ErrCorruptIndex, err)
	}

	if digest.Sum256(view) != entry.Hash {
		return BufferView{}, fmt.Errorf("%w: buffer digest mismatch", errs.ErrCorruptBuffer)
	}

	token := r.gov.Acquire()

	return BufferView{Data: view, token: token}, nil
}

func (r *Reader) getEagerBuffer(entry index.Entry) (BufferView, error) {
	scratch := pool.Get()
	defer pool.Put(scratch)

	scratch.Grow(int(entry.EncLength))
	raw := scratch.Bytes()[:entry.EncLength]

	if _, err := r.f.ReadAt(raw, int64(entry.Offset)); err != nil {
		return BufferView{}, fmt.Errorf("%w: read buffer: %v", errs.ErrIOError, err)
	}

	if digest.Sum256(raw) != entry.Hash {
		return BufferView{}, fmt.Errorf("%w: buffer digest mismatch", errs.ErrCorruptBuffer)
	}

	pipeline := codec.NewPipeline(entry.Codecs, r.registry)
	decoded, err := pipeline.Decode(raw, int(entry.DecLength))
	if err != nil {
		return BufferView{}, err
	}

	// decoded may alias scratch's backing array when the chain is empty
	// or holds only the identity "none" codec; copy it out before the
	// buffer returns to the pool.
	owned := append([]byte(nil), decoded...)

	return BufferView{Data: owned}, nil
}

// Close releases the reader's file handle and, in mapped mode, unmaps
// its backing region. It refuses with ErrBuffersStillLive if any mapped
// view vended by this reader has not yet been released.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}

	if r.direct && r.gov.Count() > 0 {
		return errs.ErrBuffersStillLive
	}

	if r.mapping != nil {
		if err := r.mapping.Close(); err != nil {
			return err
		}
	}

	if err := r.f.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", errs.ErrIOError, err)
	}

	r.closed = true

	return nil
}
