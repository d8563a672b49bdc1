// Package codec converts application values to and from tagged text envelopes.
//
// Every value is classified into exactly one kind, rendered as a string payload
// for that kind and wrapped as
//
//	{"data":"<payload>","type":"<kind>"}
//
// Decoding dispatches strictly on the recorded type tag, never on the shape of
// the payload. Values that fit no specific kind are carried as Unclassified and
// only their string form survives a round trip.
//
// The package also ships typed Codec[V] implementations (JSON, CBOR, Msgpack,
// Protobuf, raw) for stores that hold a single known Go type.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
