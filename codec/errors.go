package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrEnvelope reports input that is not a {"data","type"} envelope.
	ErrEnvelope = errors.New("codec: malformed envelope")
	// ErrInvalidDate reports an invalid date where an instant is required.
	ErrInvalidDate = errors.New("codec: invalid date")
	// ErrPayloadTooLarge is returned by size-limited decoders.
	ErrPayloadTooLarge = errors.New("codec: payload too large")
)

// SerializationError is returned when a value cannot be rendered as a payload:
// cyclic structures, unsupported members (channels, funcs, NaN inside JSON),
// or an invalid date.
type SerializationError struct {
	Kind Kind
	Err  error
}

func (e *SerializationError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("codec: serialize: %v", e.Err)
	}
	return fmt.Sprintf("codec: serialize %s: %v", e.Kind, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// DeserializationError is returned when input is not a valid envelope or its
// payload cannot be reconstructed under the recorded tag. Tag is empty when
// the envelope itself could not be read.
type DeserializationError struct {
	Tag Kind
	Err error
}

func (e *DeserializationError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("codec: deserialize: %v", e.Err)
	}
	return fmt.Sprintf("codec: deserialize %s: %v", e.Tag, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

func serErr(k Kind, err error) error   { return &SerializationError{Kind: k, Err: err} }
func deserErr(k Kind, err error) error { return &DeserializationError{Tag: k, Err: err} }
