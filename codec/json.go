package codec

import "encoding/json"

// JSON is a typed Codec for V using encoding/json, without HTML escaping.
// The zero value is ready to use.
type JSON[V any] struct{}

var _ Codec[struct{}] = JSON[struct{}]{}

func (JSON[V]) Encode(v V) ([]byte, error) {
	b, err := marshalJSON(v)
	if err != nil {
		return nil, serErr(KindObject, err)
	}
	return b, nil
}

func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		return v, deserErr(KindObject, err)
	}
	return v, nil
}
