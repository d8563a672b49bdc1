package main

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/unkn0wn-root/kvcell/codec"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestParseLiteral(t *testing.T) {
	cases := []struct {
		in, as string
		want   codec.Kind
	}{
		{"42", "", codec.KindNumber},
		{"hello", "auto", codec.KindString},
		{"true", "", codec.KindBoolean},
		{"null", "", codec.KindNull},
		{`{"a":1}`, "", codec.KindObject},
		{`[1,2]`, "", codec.KindObject},
		{`"quoted"`, "", codec.KindString},
		{`[["a",1],["b",2]]`, "map", codec.KindMap},
		{`["a","b"]`, "set", codec.KindSet},
		{"2024-01-02", "date", codec.KindDate},
		{"42", "string", codec.KindString},
	}
	for _, tc := range cases {
		v, err := parseLiteral(tc.in, tc.as)
		if err != nil {
			t.Fatalf("parseLiteral(%q, %q): %v", tc.in, tc.as, err)
		}
		if v.Kind() != tc.want {
			t.Fatalf("parseLiteral(%q, %q) kind = %s, want %s", tc.in, tc.as, v.Kind(), tc.want)
		}
	}

	if _, err := parseLiteral("x", "yaml"); err == nil {
		t.Fatalf("unknown kind should fail")
	}
	if _, err := parseLiteral("abc", "number"); err == nil {
		t.Fatalf("non-numeric number should fail")
	}
	if _, err := parseLiteral("someday", "date"); err == nil {
		t.Fatalf("explicit date kinds are strict")
	}
}

func TestEncodeCommand(t *testing.T) {
	out, err := run(t, "", "encode", "42")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if out != `{"data":"42","type":"number"}`+"\n" {
		t.Fatalf("out = %q", out)
	}

	out, err = run(t, "a<b\n", "encode", "-")
	if err != nil {
		t.Fatalf("encode stdin: %v", err)
	}
	if out != `{"data":"a<b","type":"string"}`+"\n" {
		t.Fatalf("stdin out = %q", out)
	}
}

func TestDecodeCommand(t *testing.T) {
	out, err := run(t, "", "decode", `{"data":"[[\"a\",1]]","type":"map"}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != "map\t[[\"a\",1]]\n" {
		t.Fatalf("out = %q", out)
	}

	out, err = run(t, "", "decode", `{"data":"nope","type":"date"}`)
	if err != nil {
		t.Fatalf("permissive decode: %v", err)
	}
	if out != "date\tInvalid Date\n" {
		t.Fatalf("out = %q", out)
	}
	if _, err := run(t, "", "decode", "--strict", `{"data":"nope","type":"date"}`); err == nil {
		t.Fatalf("strict decode of an invalid date should fail")
	}
	if _, err := run(t, "", "decode", `{"data":"x"}`); !errors.Is(err, codec.ErrEnvelope) {
		t.Fatalf("err = %v, want ErrEnvelope", err)
	}
}

func TestBinaryFormatsRoundTripThroughBase64(t *testing.T) {
	for _, f := range []string{"cbor", "msgpack", "proto"} {
		enc, err := run(t, "", "encode", "--format", f, "--as", "set", `["x","y"]`)
		if err != nil {
			t.Fatalf("%s encode: %v", f, err)
		}
		out, err := run(t, enc, "decode", "--format", f)
		if err != nil {
			t.Fatalf("%s decode: %v", f, err)
		}
		if out != "set\t[\"x\",\"y\"]\n" {
			t.Fatalf("%s out = %q", f, out)
		}
	}
}

func TestClassifyCommand(t *testing.T) {
	for in, want := range map[string]string{"1e3": "number", "false": "boolean", `{"x":[1]}`: "object", "plain": "string"} {
		out, err := run(t, in, "classify")
		if err != nil {
			t.Fatalf("classify %q: %v", in, err)
		}
		if out != want+"\n" {
			t.Fatalf("classify %q = %q, want %q", in, out, want)
		}
	}
}

func TestStoreCommandsOnSQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cells.db")
	store := func(args ...string) []string {
		return append(args, "--provider", "sqlite", "--sqlite-path", db)
	}

	if _, err := run(t, "", store("set", "greeting", "hello")...); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, err := run(t, "", store("get", "greeting")...)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "string\thello\n" {
		t.Fatalf("get = %q", out)
	}

	if _, err := run(t, "[[1,2]]", store("set", "pairs", "--as", "map")...); err != nil {
		t.Fatalf("set map from stdin: %v", err)
	}
	if out, _ := run(t, "", store("get", "pairs")...); out != "map\t[[1,2]]\n" {
		t.Fatalf("get pairs = %q", out)
	}

	if _, err := run(t, "", store("rm", "greeting")...); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, err := run(t, "", store("get", "greeting")...); !errors.Is(err, errNotSet) {
		t.Fatalf("get after rm: err = %v, want errNotSet", err)
	}

	if _, err := run(t, "", store("set", "pairs", "null")...); err != nil {
		t.Fatalf("set null: %v", err)
	}
	if _, err := run(t, "", store("get", "pairs")...); !errors.Is(err, errNotSet) {
		t.Fatalf("setting null should remove the entry, err = %v", err)
	}
}

func TestStoreCommandsRejectBadConfig(t *testing.T) {
	if _, err := run(t, "", "get", "k", "--provider", "floppy"); err == nil {
		t.Fatalf("unknown provider should fail")
	}
	if _, err := run(t, "", "get", "k", "--provider", "memory", "--log-backend", "syslog"); err == nil {
		t.Fatalf("unknown log backend should fail")
	}
	if _, err := run(t, "", "watch", "k", "--provider", "memory"); err == nil {
		t.Fatalf("watch without a bus should fail")
	}
}

func TestAlternateLogBackends(t *testing.T) {
	for _, backend := range []string{"zap", "logrus"} {
		if _, err := run(t, "", "set", "k", "1", "--provider", "memory", "--log-backend", backend); err != nil {
			t.Fatalf("%s: %v", backend, err)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil || out != "kvcell dev\n" {
		t.Fatalf("version = %q, %v", out, err)
	}
}

func TestInProcessProviders(t *testing.T) {
	for _, p := range []string{"memory", "bigcache", "ristretto"} {
		if _, err := run(t, "", "set", "k", `{"a":1}`, "--provider", p, "--format", "msgpack"); err != nil {
			t.Fatalf("%s: %v", p, err)
		}
	}
}
