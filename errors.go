package binpickle

import "github.com/lkpy/binpickle-go/errs"

// Sentinel errors returned by Writer and Reader, usable with errors.Is.
// These alias the errs package so the leaf component packages (frame,
// codec, index, mmapgov) can return them without importing binpickle.
var (
	ErrMalformedFrame     = errs.ErrMalformedFrame
	ErrUnsupportedVersion = errs.ErrUnsupportedVersion
	ErrCorruptIndex       = errs.ErrCorruptIndex
	ErrCorruptBuffer      = errs.ErrCorruptBuffer
	ErrUnknownCodec       = errs.ErrUnknownCodec
	ErrDecodeMismatch     = errs.ErrDecodeMismatch
	ErrBuffersStillLive   = errs.ErrBuffersStillLive
	ErrWriterFailed       = errs.ErrWriterFailed
	ErrIOError            = errs.ErrIOError
	ErrClosed             = errs.ErrClosed
	ErrInvalidState       = errs.ErrInvalidState
)
