package kvcell

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/kvcell/codec"
)

type record struct {
	level, msg string
	f          Fields
}

type recLogger struct {
	mu   sync.Mutex
	recs []record
}

func (l *recLogger) add(level, msg string, f Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recs = append(l.recs, record{level, msg, f})
}

func (l *recLogger) Debug(msg string, f Fields) { l.add("debug", msg, f) }
func (l *recLogger) Info(msg string, f Fields)  { l.add("info", msg, f) }
func (l *recLogger) Warn(msg string, f Fields)  { l.add("warn", msg, f) }
func (l *recLogger) Error(msg string, f Fields) { l.add("error", msg, f) }

func TestWithFieldsMerges(t *testing.T) {
	rl := &recLogger{}
	l := withFields(rl, Fields{"key": "k", "origin": "me"})
	l.Warn("boom", Fields{"origin": "override", "err": errors.New("x")})
	l.Debug("plain", nil)

	if len(rl.recs) != 2 {
		t.Fatalf("records = %v", rl.recs)
	}
	f := rl.recs[0].f
	if f["key"] != "k" || f["origin"] != "override" || f["err"] == nil {
		t.Fatalf("merged fields = %v", f)
	}
	if rl.recs[1].f["key"] != "k" || rl.recs[1].level != "debug" {
		t.Fatalf("second record = %+v", rl.recs[1])
	}
}

func TestWithFieldsKeepsNop(t *testing.T) {
	if _, ok := withFields(NopLogger{}, Fields{"key": "k"}).(NopLogger); !ok {
		t.Fatalf("NopLogger should not be wrapped")
	}
}

func TestCellLogsCarryStorageKey(t *testing.T) {
	mp := newMemProvider()
	mp.put("sky-hooks-k", `{"data":"{","type":"object"}`)
	rl := &recLogger{}

	c := newTestCell(t, "k", mp, func(o *Options[codec.Value]) {
		o.Logger = rl
		o.Origin = "writer-1"
	})
	if _, ok := c.Get(); ok {
		t.Fatalf("corrupt entry should read as absent")
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for _, r := range rl.recs {
		if r.msg == "corrupt entry dropped" {
			if r.level != "warn" || r.f["key"] != "sky-hooks-k" || r.f["origin"] != "writer-1" {
				t.Fatalf("record = %+v", r)
			}
			return
		}
	}
	t.Fatalf("no corrupt-entry record in %v", rl.recs)
}
