// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    DroppedEvery:  100, // sample logs: ~every 100th dropped change
//	    SelfHealEvery: 1,   // log every self-heal
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	theme, _ := kvcell.NewValue(ctx, "theme", kvcell.Options[codec.Value]{
//	    Provider: provider,
//	    Notifier: bus,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/kvcell"
)

// Hooks moves hook calls off the cell's goroutines onto a bounded queue.
// Events are dropped when the queue is full.
type Hooks struct {
	inner kvcell.Hooks
	q     chan func()
	wg    sync.WaitGroup
	mu    sync.RWMutex
	done  bool
}

var _ kvcell.Hooks = (*Hooks)(nil)

func New(inner kvcell.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events raised after
// Close are dropped.
func (h *Hooks) Close() {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		return
	}
	h.done = true
	close(h.q)
	h.mu.Unlock()
	h.wg.Wait()
}

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.done {
		return
	}
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SelfHeal(k, r string)             { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string)     { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) ChangeDropped(k, r string)        { h.try(func() { h.inner.ChangeDropped(k, r) }) }
func (h *Hooks) RevError(k string, err error)     { h.try(func() { h.inner.RevError(k, err) }) }
func (h *Hooks) PublishError(k string, err error) { h.try(func() { h.inner.PublishError(k, err) }) }
