package binpickle

// Stats is returned by Reader.Inspect: a high-level, non-mutating
// summary of a file's index, useful for debugging and tooling without
// materializing every buffer.
type Stats struct {
	BufferCount  int
	TotalEnc     uint64
	TotalDec     uint64
	CodecCounts  map[string]int
	MaxEncLength uint64
	MinEncLength uint64
}

// Inspect scans the already-decoded index and summarizes it. When
// verifyHashes is true, every buffer's stored bytes are also re-read and
// digested against the index (the same check GetBuffer performs lazily),
// surfacing the first mismatch as ErrCorruptBuffer.
func (r *Reader) Inspect(verifyHashes bool) (Stats, error) {
	stats := Stats{
		CodecCounts: make(map[string]int),
	}

	seenLength := false

	for i, e := range r.entries {
		stats.BufferCount++
		stats.TotalEnc += e.EncLength
		stats.TotalDec += e.DecLength

		if len(e.Codecs) == 0 {
			stats.CodecCounts["none"]++
		} else {
			for _, c := range e.Codecs {
				stats.CodecCounts[c.ID]++
			}
		}

		if !seenLength || e.EncLength > stats.MaxEncLength {
			stats.MaxEncLength = e.EncLength
		}
		if !seenLength || e.EncLength < stats.MinEncLength {
			stats.MinEncLength = e.EncLength
		}
		seenLength = true

		if verifyHashes {
			view, err := r.GetBuffer(i)
			if err != nil {
				return Stats{}, err
			}
			view.Release()
		}
	}

	return stats, nil
}
