package codec

import "google.golang.org/protobuf/proto"

// Protobuf is a typed Codec for generated protobuf messages.
type Protobuf[T proto.Message] struct {
	new func() T // e.g. func() *pb.Settings { return &pb.Settings{} }
}

// NewProtobuf returns a codec that decodes into messages built by ctor.
func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

// Encode marshals deterministically so equal messages store equal bytes.
func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(v)
	if err != nil {
		return nil, serErr("", err)
	}
	return b, nil
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	if err := proto.Unmarshal(b, m); err != nil {
		return m, deserErr("", err)
	}
	return m, nil
}
