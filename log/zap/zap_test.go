package zap

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/unkn0wn-root/kvcell"
)

func TestFieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("d", nil)
	l.Warn("publish failed", kvcell.Fields{"key": "sky-hooks-k", "err": errors.New("down")})

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	w := entries[1]
	if w.Level != zapcore.WarnLevel || w.Message != "publish failed" {
		t.Fatalf("entry = %+v", w)
	}
	ctx := w.ContextMap()
	if ctx["key"] != "sky-hooks-k" || ctx["err"] != "down" {
		t.Fatalf("fields = %v", ctx)
	}
}
