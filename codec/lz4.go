package codec

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4Codec wraps pierrec/lz4 behind the Codec interface.
type lz4Codec struct{}

var _ Codec = lz4Codec{}

func newLZ4Codec(map[string]any) (Codec, error) {
	return lz4Codec{}, nil
}

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

func (lz4Codec) Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	c, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(c)

	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decode decompresses an LZ4 block. When wantLen is known it is used
// directly as the destination size; otherwise the buffer grows
// geometrically until the block fits or a safety ceiling is hit.
func (lz4Codec) Decode(data []byte, wantLen int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	if wantLen > 0 {
		buf := make([]byte, wantLen)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			return nil, err
		}
		return buf[:n], nil
	}

	const maxSize = 128 * 1024 * 1024
	bufSize := len(data) * 4

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}
			return nil, err
		}
		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
