package codec

import (
	"fmt"

	"github.com/lkpy/binpickle-go/errs"
)

// factory builds a Codec instance from a chain entry's config map.
type factory func(config map[string]any) (Codec, error)

// BuiltinRegistry resolves the codec ids this package ships: "none",
// "zstd", "s2" and "lz4". It holds no external registrations; callers
// needing additional codecs implement Registry themselves, optionally
// delegating unknown ids to BuiltinRegistry.
type BuiltinRegistry struct {
	factories map[string]factory
}

var _ Registry = (*BuiltinRegistry)(nil)

// NewBuiltinRegistry returns a Registry that knows the built-in codec ids.
func NewBuiltinRegistry() *BuiltinRegistry {
	return &BuiltinRegistry{
		factories: map[string]factory{
			"none": newNoopCodec,
			"zstd": newZstdCodec,
			"s2":   newS2Codec,
			"lz4":  newLZ4Codec,
		},
	}
}

// Resolve implements Registry. Before constructing the codec it validates
// config's shape against what that codec id accepts, rather than letting
// an unrecognized option pass through to the underlying library silently.
func (r *BuiltinRegistry) Resolve(id string, config map[string]any) (Codec, error) {
	f, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownCodec, id)
	}

	if err := validateConfig(id, config); err != nil {
		return nil, err
	}

	return f(config)
}

var zstdLevels = map[string]struct{}{
	"fastest": {},
	"default": {},
	"better":  {},
	"best":    {},
}

// validateConfig checks a chain entry's config map against the shape the
// named built-in codec accepts, before the entry is resolved to a Codec.
func validateConfig(id string, config map[string]any) error {
	if id != "zstd" || len(config) == 0 {
		return nil
	}

	level, ok := config["level"]
	if !ok {
		return nil
	}

	levelStr, ok := level.(string)
	if !ok {
		return fmt.Errorf("binpickle: zstd codec config %q must be a string", "level")
	}

	if _, ok := zstdLevels[levelStr]; !ok {
		return fmt.Errorf("binpickle: zstd codec config level %q is not one of fastest/default/better/best", levelStr)
	}

	return nil
}
