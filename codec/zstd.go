package codec

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdCodec wraps klauspost/compress/zstd behind the Codec interface.
// level selects the encoder speed/ratio tradeoff; newZstdCodec sets it
// to zstd.SpeedDefault when the config names no level.
type zstdCodec struct {
	level zstd.EncoderLevel
}

var _ Codec = zstdCodec{}

var zstdLevelByName = map[string]zstd.EncoderLevel{
	"fastest": zstd.SpeedFastest,
	"default": zstd.SpeedDefault,
	"better":  zstd.SpeedBetterCompression,
	"best":    zstd.SpeedBestCompression,
}

func newZstdCodec(config map[string]any) (Codec, error) {
	level := zstd.SpeedDefault
	if v, ok := config["level"]; ok {
		// validateConfig has already confirmed v is a recognized name.
		level = zstdLevelByName[v.(string)]
	}

	return zstdCodec{level: level}, nil
}

// zstdEncoderPools caches one pooled *zstd.Encoder per level so the
// default (by far the common) case avoids per-call encoder construction.
var zstdEncoderPools sync.Map // zstd.EncoderLevel -> *sync.Pool

func encoderPoolFor(level zstd.EncoderLevel) *sync.Pool {
	if p, ok := zstdEncoderPools.Load(level); ok {
		return p.(*sync.Pool)
	}

	p := &sync.Pool{
		New: func() any {
			enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
			if err != nil {
				panic(fmt.Sprintf("codec: failed to create zstd encoder: %v", err))
			}
			return enc
		},
	}
	actual, _ := zstdEncoderPools.LoadOrStore(level, p)
	return actual.(*sync.Pool)
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("codec: failed to create zstd decoder: %v", err))
		}
		return dec
	},
}

func (c zstdCodec) Encode(data []byte) ([]byte, error) {
	pool := encoderPoolFor(c.level)
	enc, _ := pool.Get().(*zstd.Encoder)
	defer pool.Put(enc)

	return enc.EncodeAll(data, nil), nil
}

func (zstdCodec) Decode(data []byte, wantLen int) ([]byte, error) {
	dec, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(dec)

	var dst []byte
	if wantLen > 0 {
		dst = make([]byte, 0, wantLen)
	}

	out, err := dec.DecodeAll(data, dst)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd decode: %w", err)
	}

	return out, nil
}
