package binpickle

import (
	"fmt"
	"os"

	"github.com/lkpy/binpickle-go/codec"
	"github.com/lkpy/binpickle-go/digest"
	"github.com/lkpy/binpickle-go/errs"
	"github.com/lkpy/binpickle-go/frame"
	"github.com/lkpy/binpickle-go/index"
)

type writerState uint8

const (
	writerOpen writerState = iota
	writerWriting
	writerFinalized
	writerClosed
	writerFailed
)

// Writer is a single-use, NOT-thread-safe builder that streams buffers
// to a file, tracks their offsets, applies codec chains, accumulates the
// index, and emits the trailer on Finalize.
//
// A Writer that encounters an I/O or codec error transitions to a
// terminal failed state; every method but Close then fails with
// ErrWriterFailed, and the caller must discard the partial file.
type Writer struct {
	f        *os.File
	registry codec.Registry
	state    writerState

	offset  uint64 // current write position
	entries []index.Entry
}

// Create creates path and returns a Writer ready to accept buffers. The
// header is written immediately with a placeholder payload length, which
// Finalize back-patches once the payload region's true length is known.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", errs.ErrIOError, path, err)
	}

	h := frame.NewHeader(0)
	if _, err := f.Write(h.Bytes()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: write header: %v", errs.ErrIOError, err)
	}

	return &Writer{
		f:        f,
		registry: codec.NewBuiltinRegistry(),
		state:    writerOpen,
		offset:   frame.HeaderSize,
	}, nil
}

func (w *Writer) fail(err error) error {
	w.state = writerFailed
	return err
}

// WriteBuffer streams data through the codec chain named by codecs,
// writing the resulting bytes at the writer's current position, and
// records a new index entry for it. If codecs is empty and
// alignForMapping is true, the write position is padded with zero bytes
// to the next page boundary first; alignment is ignored whenever codecs
// is non-empty, since a compressed buffer cannot be mapped anyway.
func (w *Writer) WriteBuffer(data []byte, codecs []codec.ChainEntry, info map[string]any, alignForMapping bool) error {
	switch w.state {
	case writerFailed:
		return errs.ErrWriterFailed
	case writerClosed:
		return errs.ErrClosed
	case writerFinalized:
		return errs.ErrInvalidState
	}
	w.state = writerWriting

	if len(codecs) == 0 && alignForMapping {
		pad := frame.PadForAlignment(w.offset, uint64(pageSize))
		if pad > 0 {
			if err := w.writeRaw(make([]byte, pad)); err != nil {
				return w.fail(err)
			}
		}
	}

	pipeline := codec.NewPipeline(codecs, w.registry)
	encoded, err := pipeline.Encode(data)
	if err != nil {
		return w.fail(err)
	}

	engine := digest.New()
	engine.Update(encoded)
	hash := engine.Sum()

	entryOffset := w.offset
	if err := w.writeRaw(encoded); err != nil {
		return w.fail(err)
	}

	w.entries = append(w.entries, index.Entry{
		Offset:    entryOffset,
		EncLength: uint64(len(encoded)),
		DecLength: uint64(len(data)),
		Hash:      hash,
		Codecs:    append([]codec.ChainEntry(nil), codecs...),
		Info:      info,
	})

	return nil
}

func (w *Writer) writeRaw(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	n, err := w.f.Write(b)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrIOError, err)
	}
	if n != len(b) {
		return fmt.Errorf("%w: short write (%d of %d bytes)", errs.ErrIOError, n, len(b))
	}
	w.offset += uint64(n)
	return nil
}

// Finalize emits the index blob at the current position, computes its
// digest, writes the trailer, back-patches the header's payload length,
// and flushes. It returns the total file length. Finalize may be called
// with zero buffers written.
func (w *Writer) Finalize() (int64, error) {
	switch w.state {
	case writerFailed:
		return 0, errs.ErrWriterFailed
	case writerClosed:
		return 0, errs.ErrClosed
	case writerFinalized:
		return 0, errs.ErrInvalidState
	}

	indexOffset := w.offset
	indexBytes, err := index.Encode(w.entries)
	if err != nil {
		return 0, w.fail(err)
	}

	if err := w.writeRaw(indexBytes); err != nil {
		return 0, w.fail(err)
	}

	indexHash := digest.Sum256(indexBytes)
	trailer := frame.Trailer{
		IndexOffset: indexOffset,
		IndexLength: uint32(len(indexBytes)),
		IndexHash:   indexHash,
	}
	if err := w.writeRaw(trailer.Bytes()); err != nil {
		return 0, w.fail(err)
	}

	header := frame.NewHeader(indexOffset - frame.HeaderSize)
	if _, err := w.f.WriteAt(header.Bytes(), 0); err != nil {
		return 0, w.fail(fmt.Errorf("%w: patch header: %v", errs.ErrIOError, err))
	}

	if err := w.f.Sync(); err != nil {
		return 0, w.fail(fmt.Errorf("%w: sync: %v", errs.ErrIOError, err))
	}

	w.state = writerFinalized

	return int64(w.offset), nil
}

// Close releases the underlying file handle. It is idempotent. Closing a
// Writer that was never finalized or that failed mid-write leaves
// whatever partial bytes were written on disk; Close neither makes the
// file valid nor removes it.
func (w *Writer) Close() error {
	if w.state == writerClosed {
		return nil
	}
	w.state = writerClosed
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", errs.ErrIOError, err)
	}
	return nil
}
