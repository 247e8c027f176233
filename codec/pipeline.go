package codec

import (
	"fmt"

	"github.com/lkpy/binpickle-go/errs"
)

// Pipeline composes an ordered chain of codec stages against a Registry.
// Encode applies the chain first-to-last; Decode applies it last-to-first.
// An empty chain is the identity transform.
type Pipeline struct {
	Chain    []ChainEntry
	Registry Registry
}

// NewPipeline builds a Pipeline for the given chain and registry.
func NewPipeline(chain []ChainEntry, registry Registry) *Pipeline {
	return &Pipeline{Chain: chain, Registry: registry}
}

// Encode runs data through each chain stage in order, returning the fully
// encoded bytes. The returned length is what callers record as a buffer's
// enc_length.
func (p *Pipeline) Encode(data []byte) ([]byte, error) {
	out := data
	for _, entry := range p.Chain {
		c, err := p.Registry.Resolve(entry.ID, entry.Config)
		if err != nil {
			return nil, err
		}

		out, err = c.Encode(out)
		if err != nil {
			return nil, fmt.Errorf("binpickle: codec %q encode: %w", entry.ID, err)
		}
	}

	return out, nil
}

// Decode reverses the chain, last stage first, producing the original
// decoded bytes. wantLen is the dec_length recorded for this buffer; the
// final stage (the one that reconstructs the pre-encode data) receives it
// as its length hint, and its output is checked against it. Earlier
// (still-encoded, intermediate) stages receive -1 since their output
// length is not separately recorded. An empty chain returns data unchanged
// but still enforces wantLen when it is known.
func (p *Pipeline) Decode(data []byte, wantLen int) ([]byte, error) {
	out := data

	for i := len(p.Chain) - 1; i >= 0; i-- {
		entry := p.Chain[i]

		c, err := p.Registry.Resolve(entry.ID, entry.Config)
		if err != nil {
			return nil, err
		}

		stageWantLen := -1
		if i == 0 {
			stageWantLen = wantLen
		}

		out, err = c.Decode(out, stageWantLen)
		if err != nil {
			return nil, fmt.Errorf("binpickle: codec %q decode: %w", entry.ID, err)
		}
	}

	if wantLen >= 0 && len(out) != wantLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", errs.ErrDecodeMismatch, wantLen, len(out))
	}

	return out, nil
}
