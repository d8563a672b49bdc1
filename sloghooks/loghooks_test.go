package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newBufLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestRedactsKeys(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{})
	h.RevError("sky-hooks-secret-token", errors.New("down"))
	out := buf.String()
	if strings.Contains(out, "secret-token") {
		t.Fatalf("raw key leaked: %s", out)
	}
	if !strings.Contains(out, "kvcell.rev_error") || !strings.Contains(out, "err=down") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestCustomRedact(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{Redact: func(string) string { return "K" }})
	h.ProviderSetRejected("x")
	if !strings.Contains(buf.String(), "key=K") {
		t.Fatalf("custom redactor not used: %s", buf.String())
	}
}

func TestSamplingAndEchoes(t *testing.T) {
	l, buf := newBufLogger()
	h := New(l, Options{DroppedEvery: 3})
	for i := 0; i < 9; i++ {
		h.ChangeDropped("k", "stale")
	}
	h.ChangeDropped("k", "echo")
	if n := strings.Count(buf.String(), "kvcell.change_dropped"); n != 3 {
		t.Fatalf("logged %d drops, want 3", n)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	h := New(nil, Options{})
	h.SelfHeal("k", "decode")
	h.PublishError("k", errors.New("x"))
}
