package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack is a typed Codec for V using vmihailenco/msgpack/v5.
// The zero value is ready to use. Struct fields follow `msgpack:"name"` tags,
// not json tags.
type Msgpack[V any] struct{}

var _ Codec[struct{}] = Msgpack[struct{}]{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, serErr("", err)
	}
	return b, nil
}

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return v, deserErr("", err)
	}
	return v, nil
}
