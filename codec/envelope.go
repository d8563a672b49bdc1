package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Envelope is the stored form of a value: a kind tag and a string payload.
type Envelope struct {
	Data string `json:"data" cbor:"data" msgpack:"data"`
	Type Kind   `json:"type" cbor:"type" msgpack:"type"`
}

// Encode classifies x and returns its JSON envelope text.
func Encode(x any) (string, error) {
	b, err := Tagged{}.Encode(Of(x))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode reconstructs the value recorded in a JSON envelope. Invalid date
// payloads decode to the invalid date.
func Decode(text string) (Value, error) {
	return Tagged{}.Decode([]byte(text))
}

// Pack classifies x and builds its envelope.
func Pack(x any) (Envelope, error) {
	v := Of(x)
	p, err := payload(v)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Data: p, Type: v.Kind()}, nil
}

// Unpack reconstructs a value from e, dispatching on e.Type only. The string
// tag and unknown tags yield String; the any tag yields Unclassified.
// With strict set, an unparsable date payload is an error instead of the
// invalid date.
func Unpack(e Envelope, strict bool) (Value, error) {
	switch e.Type {
	case KindNumber:
		f, err := parseNumber(e.Data)
		if err != nil {
			return nil, deserErr(e.Type, err)
		}
		return Number(f), nil
	case KindBoolean:
		return Bool(e.Data == "true"), nil
	case KindObject:
		var tree any
		if err := json.Unmarshal([]byte(e.Data), &tree); err != nil {
			return nil, deserErr(e.Type, err)
		}
		return Object{v: tree}, nil
	case KindMap:
		return unpackMap(e.Data)
	case KindSet:
		return unpackSet(e.Data)
	case KindDate:
		d := ParseDate(e.Data)
		if strict && !d.Valid() {
			return nil, deserErr(e.Type, fmt.Errorf("%w: %q", ErrInvalidDate, e.Data))
		}
		return d, nil
	case KindNull:
		return Null{}, nil
	case KindAny:
		return Unclassified(e.Data), nil
	default:
		return String(e.Data), nil
	}
}

func unpackMap(data string) (Value, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, deserErr(KindMap, err)
	}
	m := &Map{}
	for i, r := range raw {
		var pair []any
		if err := json.Unmarshal(r, &pair); err != nil || (pair == nil && !isJSONArray(r)) {
			return nil, deserErr(KindMap, fmt.Errorf("entry %d is not a key/value pair: %s", i, r))
		}
		var k, v any
		if len(pair) > 0 {
			k = pair[0]
		}
		if len(pair) > 1 {
			v = pair[1]
		}
		m.Set(k, v)
	}
	return m, nil
}

func unpackSet(data string) (Value, error) {
	var elems []any
	if err := json.Unmarshal([]byte(data), &elems); err != nil {
		return nil, deserErr(KindSet, err)
	}
	return NewSet(elems...), nil
}

func isJSONArray(r json.RawMessage) bool {
	r = bytes.TrimSpace(r)
	return len(r) > 0 && r[0] == '['
}

// payload renders v per its kind.
func payload(v Value) (string, error) {
	switch x := v.(type) {
	case Object:
		return canonicalJSON(KindObject, x.v)
	case *Map:
		return canonicalJSON(KindMap, x.pairs())
	case *Set:
		return canonicalJSON(KindSet, x.Values())
	case Date:
		s, err := x.ISO()
		if err != nil {
			return "", serErr(KindDate, err)
		}
		return s, nil
	case Null:
		return "null", nil
	case Number:
		return formatNumber(float64(x)), nil
	case Bool:
		return strconv.FormatBool(bool(x)), nil
	case String:
		return string(x), nil
	case Unclassified:
		return string(x), nil
	case nil:
		return "null", nil
	}
	return "", serErr(v.Kind(), fmt.Errorf("unsupported value %T", v))
}

// canonicalJSON marshals x, then re-marshals the generic tree so struct field
// order and Go-specific number forms never leak into the payload. After one
// pass the output is stable: Encode(Decode(Encode(v))) == Encode(v).
func canonicalJSON(k Kind, x any) (string, error) {
	b, err := marshalJSON(x)
	if err != nil {
		return "", serErr(k, err)
	}
	var tree any
	if err := json.Unmarshal(b, &tree); err != nil {
		return "", serErr(k, err)
	}
	b, err = marshalJSON(tree)
	if err != nil {
		return "", serErr(k, err)
	}
	return string(b), nil
}

// marshalJSON is json.Marshal without HTML escaping and without the trailing
// newline json.Encoder appends.
func marshalJSON(x any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(x); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
