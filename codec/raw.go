package codec

// Bytes is an identity codec for []byte cells. The stored entry is exactly
// the value; no envelope is written.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return b, nil }

// Text stores Go strings verbatim (assumed UTF-8, not validated). Unlike a
// Tagged cell holding String values, nothing marks the entry's kind.
type Text struct{}

func (Text) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (Text) Decode(b []byte) (string, error) { return string(b), nil }
