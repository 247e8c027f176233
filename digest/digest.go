// Package digest implements the streaming SHA-256 used to authenticate
// both individual buffers and the index blob.
package digest

import "crypto/sha256"

// Size is the byte length of a digest produced by this package.
const Size = sha256.Size

// Engine is a streaming SHA-256 accumulator. The zero value is not ready
// for use; call New.
type Engine struct {
	hasher interface {
		Write(p []byte) (int, error)
		Sum(b []byte) []byte
		Reset()
	}
}

// New returns a fresh Engine ready for Update calls.
func New() *Engine {
	return &Engine{hasher: sha256.New()}
}

// Update feeds span into the running digest.
func (e *Engine) Update(span []byte) {
	_, _ = e.hasher.Write(span)
}

// Sum finalizes the digest and returns it. The Engine may continue to be
// used afterward; Sum does not reset the running state.
func (e *Engine) Sum() [32]byte {
	var out [32]byte
	copy(out[:], e.hasher.Sum(nil))
	return out
}

// Sum256 computes the digest of data in a single call, for callers that
// already have the whole buffer in memory and don't need streaming.
func Sum256(data []byte) [32]byte {
	return sha256.Sum256(data)
}
