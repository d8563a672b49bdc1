package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR is a typed Codec for V using fxamacker/cbor.
// The zero value is NOT ready to use. Construct with NewCBOR or MustCBOR.
//
// Use deterministic=true for canonical encoding (RFC 8949 Core Deterministic)
// when two processes must produce byte-identical entries for equal values.
// Time values are encoded as RFC3339Nano.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

// NewCBOR constructs a CBOR codec.
//   - deterministic: CoreDetEncOptions (RFC 8949).
//   - otherwise: PreferredUnsortedEncOptions.
func NewCBOR[V any](deterministic bool) (CBOR[V], error) {
	var eo cbor.EncOptions
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	} else {
		eo = cbor.PreferredUnsortedEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := (cbor.DecOptions{}).DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error. Meant for package-level
// variables in tests and examples.
func MustCBOR[V any](deterministic bool) CBOR[V] {
	c, err := NewCBOR[V](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) {
	b, err := c.enc.Marshal(v)
	if err != nil {
		return nil, serErr("", err)
	}
	return b, nil
}

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	if err := c.dec.Unmarshal(b, &v); err != nil {
		return v, deserErr("", err)
	}
	return v, nil
}
