package codec

import (
	"fmt"
)

// Codec encodes values to bytes and decodes them back.
// Implementations must be safe for concurrent use.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Limit wraps a codec and rejects payloads larger than MaxDecode bytes on Decode.
// A shared remote tier is written by other processes, so its payloads are not trusted.
// If MaxDecode <= 0, the size is not checked.
type Limit[V any] struct {
	Inner     Codec[V]
	MaxDecode int
}

var _ Codec[struct{}] = Limit[struct{}]{}

// Encode calls the inner codec.
func (c Limit[V]) Encode(v V) ([]byte, error) {
	return c.Inner.Encode(v)
}

// Decode checks the payload size and calls the inner codec.
func (c Limit[V]) Decode(b []byte) (V, error) {
	if c.MaxDecode > 0 && len(b) > c.MaxDecode {
		var zero V
		return zero, fmt.Errorf("codec: payload too large: %d > %d", len(b), c.MaxDecode)
	}
	return c.Inner.Decode(b)
}
