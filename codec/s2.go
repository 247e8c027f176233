package codec

import "github.com/klauspost/compress/s2"

// s2Codec wraps klauspost/compress/s2 behind the Codec interface.
type s2Codec struct{}

var _ Codec = s2Codec{}

func newS2Codec(map[string]any) (Codec, error) {
	return s2Codec{}, nil
}

func (s2Codec) Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return s2.Encode(nil, data), nil
}

func (s2Codec) Decode(data []byte, wantLen int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return s2.Decode(nil, data)
}
