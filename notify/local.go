package notify

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by a closed bus.
var ErrClosed = errors.New("notify: bus closed")

// Any subscribes to changes on every key.
const Any = ""

type listener struct {
	id   uint64
	h    Handler
	once bool
}

// Local is an in-process bus. The zero value is ready to use. Handlers are
// called synchronously, in registration order, with wildcard listeners after
// key listeners.
type Local struct {
	mu     sync.RWMutex
	next   uint64
	byKey  map[string][]listener
	closed bool
}

var _ Bus = (*Local)(nil)

func NewLocal() *Local { return &Local{} }

// On registers h for changes to key (Any for all keys) and returns a function
// that removes it.
func (b *Local) On(key string, h Handler) (off func()) {
	return b.add(key, h, false)
}

// Once registers h to run for the next change to key only.
func (b *Local) Once(key string, h Handler) (off func()) {
	return b.add(key, h, true)
}

// Off removes every listener registered for key.
func (b *Local) Off(key string) {
	b.mu.Lock()
	delete(b.byKey, key)
	b.mu.Unlock()
}

// Reset removes all listeners.
func (b *Local) Reset() {
	b.mu.Lock()
	b.byKey = nil
	b.mu.Unlock()
}

// Len reports the number of listeners for key.
func (b *Local) Len(key string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byKey[key])
}

// Emit delivers c to the listeners of c.Key and then to wildcard listeners.
func (b *Local) Emit(c Change) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	var hs []Handler
	hs = b.collect(hs, c.Key)
	if c.Key != Any {
		hs = b.collect(hs, Any)
	}
	b.mu.Unlock()

	for _, h := range hs {
		h(c)
	}
}

// collect appends the handlers for key and drops fired once-listeners.
// b.mu must be held.
func (b *Local) collect(dst []Handler, key string) []Handler {
	ls := b.byKey[key]
	if len(ls) == 0 {
		return dst
	}
	kept := ls[:0:0]
	for _, l := range ls {
		dst = append(dst, l.h)
		if !l.once {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		delete(b.byKey, key)
	} else {
		b.byKey[key] = kept
	}
	return dst
}

func (b *Local) add(key string, h Handler, once bool) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.byKey == nil {
		b.byKey = make(map[string][]listener)
	}
	b.next++
	id := b.next
	b.byKey[key] = append(b.byKey[key], listener{id: id, h: h, once: once})

	var done sync.Once
	return func() { done.Do(func() { b.remove(key, id) }) }
}

func (b *Local) remove(key string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ls := b.byKey[key]
	for i, l := range ls {
		if l.id == id {
			b.byKey[key] = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(b.byKey[key]) == 0 {
		delete(b.byKey, key)
	}
}

func (b *Local) Publish(_ context.Context, c Change) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	b.Emit(c)
	return nil
}

func (b *Local) Subscribe(_ context.Context, h Handler) (func(), error) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	return b.On(Any, h), nil
}

// Close drops all listeners; later publishes fail with ErrClosed.
func (b *Local) Close(context.Context) error {
	b.mu.Lock()
	b.closed = true
	b.byKey = nil
	b.mu.Unlock()
	return nil
}
