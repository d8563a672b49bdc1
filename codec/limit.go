package codec

import "fmt"

// Limit wraps another codec and rejects oversized inputs at Decode time,
// before Inner sees them. Encode is forwarded unchanged.
// If MaxDecode <= 0, size limiting is disabled.
//
// Typical use: a shared store written by other processes.
type Limit[V any] struct {
	// Inner is the wrapped codec. It must be set.
	Inner Codec[V]
	// MaxDecode is the largest accepted input length in bytes.
	MaxDecode int
}

func (c Limit[V]) Encode(v V) ([]byte, error) { return c.Inner.Encode(v) }

func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, deserErr("", fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(b), c.MaxDecode))
	}
	return c.Inner.Decode(b)
}
