package codec

import "fmt"

// Tagged is the Codec[Value] behind Cell storage: it wraps every value in a
// kind-tagged envelope. The zero value uses the JSON wire format, decodes
// invalid dates permissively and has no size limit.
type Tagged struct {
	// Format renders the envelope. nil => JSONFormat.
	Format Format
	// Strict turns unparsable date payloads into DeserializationErrors.
	Strict bool
	// MaxDecode rejects inputs longer than this many bytes. <= 0 disables.
	MaxDecode int
}

var _ Codec[Value] = Tagged{}

func (t Tagged) format() Format {
	if t.Format == nil {
		return JSONFormat{}
	}
	return t.Format
}

// Encode packs v and renders the envelope.
func (t Tagged) Encode(v Value) ([]byte, error) {
	e, err := Pack(v)
	if err != nil {
		return nil, err
	}
	b, err := t.format().MarshalEnvelope(e)
	if err != nil {
		return nil, serErr(e.Type, err)
	}
	return b, nil
}

// Decode reads an envelope and reconstructs its value.
func (t Tagged) Decode(b []byte) (Value, error) {
	if t.MaxDecode > 0 && len(b) > t.MaxDecode {
		return nil, deserErr("", fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(b), t.MaxDecode))
	}
	e, err := t.format().UnmarshalEnvelope(b)
	if err != nil {
		return nil, deserErr("", err)
	}
	return Unpack(e, t.Strict)
}
