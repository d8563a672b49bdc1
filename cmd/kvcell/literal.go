package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/unkn0wn-root/kvcell/codec"
)

// parseLiteral turns command-line text into a value. With as empty or
// "auto" valid JSON is classified (objects and arrays become object values)
// and anything else is a string. An explicit kind reads s as that kind's
// envelope payload, e.g. --as map with `[["a",1]]`.
func parseLiteral(s, as string) (codec.Value, error) {
	if as == "" || as == "auto" {
		var tree any
		if err := json.Unmarshal([]byte(s), &tree); err != nil {
			return codec.String(s), nil
		}
		return codec.Of(tree), nil
	}
	k := codec.Kind(as)
	if !k.Known() {
		return nil, fmt.Errorf("unknown kind %q", as)
	}
	return codec.Unpack(codec.Envelope{Data: s, Type: k}, true)
}

// describe renders a value as "<kind>\t<payload>".
func describe(v codec.Value) (string, error) {
	if d, ok := v.(codec.Date); ok && !d.Valid() {
		return string(codec.KindDate) + "\t" + d.String(), nil
	}
	e, err := codec.Pack(v)
	if err != nil {
		return "", err
	}
	return string(e.Type) + "\t" + e.Data, nil
}

// readArg returns args[0], or stdin when args is empty or "-".
func readArg(in io.Reader, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

// terminal text for an encoded envelope; binary formats are base64.
func toText(f codec.Format, b []byte) string {
	if f.Name() == "json" {
		return string(b)
	}
	return base64.StdEncoding.EncodeToString(b)
}

func fromText(f codec.Format, s string) ([]byte, error) {
	if f.Name() == "json" {
		return []byte(s), nil
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%s envelope must be base64: %w", f.Name(), err)
	}
	return b, nil
}
