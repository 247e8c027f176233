// Package index implements the self-describing encoding of the index: the
// ordered sequence of per-buffer IndexEntry records that sits between the
// payload region and the trailer.
package index

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/lkpy/binpickle-go/codec"
	"github.com/lkpy/binpickle-go/errs"
)

// Entry is one buffer's index record.
type Entry struct {
	Offset    uint64              `msgpack:"offset"`
	EncLength uint64              `msgpack:"enc_length"`
	DecLength uint64              `msgpack:"dec_length"`
	Hash      [32]byte            `msgpack:"hash"`
	Codecs    []codec.ChainEntry  `msgpack:"codecs"`
	Info      map[string]any      `msgpack:"info,omitempty"`
}

// wireEntry is Entry's on-the-wire shape. msgpack/v5 does not implement
// [32]byte natively, and ChainEntry's exported fields are renamed to
// stable, minimal wire keys independent of Go identifier casing.
type wireEntry struct {
	Offset    uint64           `msgpack:"offset"`
	EncLength uint64           `msgpack:"enc_length"`
	DecLength uint64           `msgpack:"dec_length"`
	Hash      []byte           `msgpack:"hash"`
	Codecs    []wireChainEntry `msgpack:"codecs"`
	Info      map[string]any   `msgpack:"info,omitempty"`
}

type wireChainEntry struct {
	ID     string         `msgpack:"id"`
	Config map[string]any `msgpack:"config,omitempty"`
}

func (e Entry) toWire() wireEntry {
	chains := make([]wireChainEntry, len(e.Codecs))
	for i, c := range e.Codecs {
		chains[i] = wireChainEntry{ID: c.ID, Config: c.Config}
	}

	return wireEntry{
		Offset:    e.Offset,
		EncLength: e.EncLength,
		DecLength: e.DecLength,
		Hash:      append([]byte(nil), e.Hash[:]...),
		Codecs:    chains,
		Info:      e.Info,
	}
}

func (w wireEntry) toEntry() (Entry, error) {
	if len(w.Hash) != 32 {
		return Entry{}, fmt.Errorf("%w: entry hash must be 32 bytes, got %d", errs.ErrCorruptIndex, len(w.Hash))
	}

	chains := make([]codec.ChainEntry, len(w.Codecs))
	for i, c := range w.Codecs {
		chains[i] = codec.ChainEntry{ID: c.ID, Config: c.Config}
	}

	e := Entry{
		Offset:    w.Offset,
		EncLength: w.EncLength,
		DecLength: w.DecLength,
		Codecs:    chains,
		Info:      w.Info,
	}
	copy(e.Hash[:], w.Hash)

	return e, nil
}

// Encode serializes entries as a msgpack array of maps. The array order
// is preserved exactly, which is how buffer order is recovered on read.
// Map keys are written in sorted order so identical entries always
// encode to identical bytes.
func Encode(entries []Entry) ([]byte, error) {
	wire := make([]wireEntry, len(entries))
	for i, e := range entries {
		wire[i] = e.toWire()
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(wire); err != nil {
		return nil, fmt.Errorf("binpickle: encode index: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode parses a msgpack-encoded index blob back into entries, rejecting
// any entry whose hash is not 32 bytes. Other missing fields decode as
// zero values, and top-level keys other than the entry fields are ignored
// and not kept.
func Decode(data []byte) ([]Entry, error) {
	var wire []wireEntry
	if err := msgpack.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCorruptIndex, err)
	}

	entries := make([]Entry, len(wire))
	for i, w := range wire {
		e, err := w.toEntry()
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}

	return entries, nil
}
