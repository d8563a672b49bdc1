package asynchook

import (
	"errors"
	"sync"
	"testing"

	"github.com/unkn0wn-root/kvcell"
)

type countHooks struct {
	kvcell.NopHooks
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (c *countHooks) record(s string) {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	c.events = append(c.events, s)
	c.mu.Unlock()
}

func (c *countHooks) SelfHeal(k, r string)         { c.record("heal:" + k + ":" + r) }
func (c *countHooks) RevError(k string, err error) { c.record("rev:" + k + ":" + err.Error()) }

func TestDeliversAndDrainsOnClose(t *testing.T) {
	inner := &countHooks{}
	h := New(inner, 2, 16)
	h.SelfHeal("k", "decode")
	h.RevError("k", errors.New("down"))
	h.Close()
	h.Close() // idempotent

	if len(inner.events) != 2 {
		t.Fatalf("events = %v", inner.events)
	}
	h.SelfHeal("late", "decode") // dropped, must not panic
}

func TestDropsWhenFull(t *testing.T) {
	inner := &countHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// one event is held by the blocked worker, one fills the queue
	for i := 0; i < 10; i++ {
		h.SelfHeal("k", "decode")
	}
	close(inner.block)
	h.Close()
	if n := len(inner.events); n < 1 || n > 2 {
		t.Fatalf("delivered %d events, want 1 or 2 with a queue of 1", n)
	}
}
