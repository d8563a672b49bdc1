package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"text": FormatText, "TINT": FormatText, "json": FormatJSON, "": FormatAuto, "xml": FormatAuto}
	for in, want := range cases {
		if got := ParseFormat(in); got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != slog.LevelDebug || ParseLevel("ERROR") != slog.LevelError {
		t.Fatalf("known levels not parsed")
	}
	if ParseLevel("loud") != slog.LevelWarn {
		t.Fatalf("unknown level should default to warn")
	}
}

func TestNewJSONWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, FormatAuto, slog.LevelInfo)
	l.Info("hello", "k", "v")
	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if m["msg"] != "hello" || m["k"] != "v" {
		t.Fatalf("record = %v", m)
	}
}

func TestNewTextForced(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, FormatText, slog.LevelDebug)
	l.Debug("tinted", "k", "v")
	out := buf.String()
	if !strings.Contains(out, "tinted") || strings.HasPrefix(out, "{") {
		t.Fatalf("text output = %q", out)
	}
}
