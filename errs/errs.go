// Package errs defines the sentinel errors shared across binpickle's
// component packages. It exists on its own so that frame, codec, digest,
// index and mmapgov can all return these errors without importing the
// root binpickle package (which imports them).
package errs

import "errors"

var (
	// ErrMalformedFrame is returned when the file header or trailer does
	// not match the fixed-width layout: bad magic, short read, or a
	// reserved field that isn't zero.
	ErrMalformedFrame = errors.New("binpickle: malformed frame")

	// ErrUnsupportedVersion is returned when the header's version field
	// names a format revision this package does not implement.
	ErrUnsupportedVersion = errors.New("binpickle: unsupported version")

	// ErrCorruptIndex is returned when the index region fails to decode,
	// or decodes into a structurally invalid set of entries.
	ErrCorruptIndex = errors.New("binpickle: corrupt index")

	// ErrCorruptBuffer is returned when a buffer's digest does not match
	// the hash recorded for it in the index.
	ErrCorruptBuffer = errors.New("binpickle: corrupt buffer")

	// ErrUnknownCodec is returned when an index entry names a codec id
	// that is not present in the registry used to open the file.
	ErrUnknownCodec = errors.New("binpickle: unknown codec")

	// ErrDecodeMismatch is returned when a codec's decoded output length
	// does not match the dec_length recorded for the buffer.
	ErrDecodeMismatch = errors.New("binpickle: decode length mismatch")

	// ErrBuffersStillLive is returned by Reader.Close when one or more
	// mapped buffer views vended by the reader have not been released.
	ErrBuffersStillLive = errors.New("binpickle: mapped buffers still live")

	// ErrWriterFailed is returned by any Writer method other than Close
	// called after a prior method on the same writer has failed; the writer is stuck in
	// its terminal failed state and must be discarded.
	ErrWriterFailed = errors.New("binpickle: writer is in failed state")

	// ErrIOError wraps an underlying I/O failure (short write, seek
	// error, and similar) encountered while reading or writing a file.
	ErrIOError = errors.New("binpickle: i/o error")

	// ErrClosed is returned by Writer or Reader methods called after
	// Close has already been called on them.
	ErrClosed = errors.New("binpickle: already closed")

	// ErrInvalidState is returned when a Writer method is called out of
	// the Open -> Writing -> Finalized sequence (e.g. WriteBuffer after
	// Finalize).
	ErrInvalidState = errors.New("binpickle: invalid writer state")
)
