package codec

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Format renders an Envelope to bytes and back. JSONFormat is the canonical
// text wire format; the binary formats carry the same two fields for stores
// that hold raw bytes.
type Format interface {
	Name() string
	MarshalEnvelope(Envelope) ([]byte, error)
	UnmarshalEnvelope([]byte) (Envelope, error)
}

// FormatByName resolves "json", "cbor", "msgpack" or "proto".
func FormatByName(name string) (Format, error) {
	switch name {
	case "", "json":
		return JSONFormat{}, nil
	case "cbor":
		return CBORFormat{}, nil
	case "msgpack":
		return MsgpackFormat{}, nil
	case "proto", "protobuf":
		return ProtoFormat{}, nil
	}
	return nil, fmt.Errorf("codec: unknown envelope format %q", name)
}

// wireEnvelope detects missing fields on the way in.
type wireEnvelope struct {
	Data *string `json:"data" cbor:"data" msgpack:"data"`
	Type *string `json:"type" cbor:"type" msgpack:"type"`
}

func (w wireEnvelope) envelope() (Envelope, error) {
	switch {
	case w.Data == nil && w.Type == nil:
		return Envelope{}, fmt.Errorf("%w: missing data and type", ErrEnvelope)
	case w.Data == nil:
		return Envelope{}, fmt.Errorf("%w: missing data", ErrEnvelope)
	case w.Type == nil:
		return Envelope{}, fmt.Errorf("%w: missing type", ErrEnvelope)
	}
	return Envelope{Data: *w.Data, Type: Kind(*w.Type)}, nil
}

// JSONFormat renders {"data":"<payload>","type":"<kind>"}.
type JSONFormat struct{}

func (JSONFormat) Name() string { return "json" }

func (JSONFormat) MarshalEnvelope(e Envelope) ([]byte, error) { return marshalJSON(e) }

func (JSONFormat) UnmarshalEnvelope(b []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrEnvelope, err)
	}
	return w.envelope()
}

// CBORFormat renders the envelope as a two-entry CBOR map.
type CBORFormat struct{}

func (CBORFormat) Name() string { return "cbor" }

func (CBORFormat) MarshalEnvelope(e Envelope) ([]byte, error) { return cbor.Marshal(e) }

func (CBORFormat) UnmarshalEnvelope(b []byte) (Envelope, error) {
	var w wireEnvelope
	if err := cbor.Unmarshal(b, &w); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrEnvelope, err)
	}
	return w.envelope()
}

// MsgpackFormat renders the envelope as a two-entry msgpack map.
type MsgpackFormat struct{}

func (MsgpackFormat) Name() string { return "msgpack" }

func (MsgpackFormat) MarshalEnvelope(e Envelope) ([]byte, error) { return msgpack.Marshal(e) }

func (MsgpackFormat) UnmarshalEnvelope(b []byte) (Envelope, error) {
	var w wireEnvelope
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrEnvelope, err)
	}
	return w.envelope()
}

// ProtoFormat renders the envelope as a google.protobuf.Struct with string
// fields "data" and "type".
type ProtoFormat struct{}

func (ProtoFormat) Name() string { return "proto" }

func (ProtoFormat) MarshalEnvelope(e Envelope) ([]byte, error) {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		"data": structpb.NewStringValue(e.Data),
		"type": structpb.NewStringValue(string(e.Type)),
	}}
	return proto.MarshalOptions{Deterministic: true}.Marshal(s)
}

func (ProtoFormat) UnmarshalEnvelope(b []byte) (Envelope, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrEnvelope, err)
	}
	var w wireEnvelope
	for name, dst := range map[string]**string{"data": &w.Data, "type": &w.Type} {
		f, ok := s.Fields[name]
		if !ok {
			continue
		}
		sv, ok := f.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return Envelope{}, fmt.Errorf("%w: field %q is not a string", ErrEnvelope, name)
		}
		str := sv.StringValue
		*dst = &str
	}
	return w.envelope()
}
