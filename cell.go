package kvcell

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/kvcell/codec"
	"github.com/unkn0wn-root/kvcell/internal/util"
	"github.com/unkn0wn-root/kvcell/notify"
	pr "github.com/unkn0wn-root/kvcell/provider"
	"github.com/unkn0wn-root/kvcell/revstore"
)

type observer[V any] struct {
	id uint64
	fn func(V, bool)
}

// Cell is one persisted value. All methods are safe for concurrent use.
// Observers run outside the cell lock: on the caller's goroutine for local
// writes and on the bus goroutine for external changes.
type Cell[V any] struct {
	key      string
	skey     string
	provider pr.Provider
	codec    codec.Codec[V]
	absent   func(V) bool
	ttl      time.Duration
	bus      notify.Bus
	revs     revstore.RevStore
	origin   string
	log      Logger
	hooks    Hooks

	mu      sync.Mutex
	val     V
	ok      bool
	lastRev uint64
	closed  bool

	obsMu     sync.Mutex
	observers []observer[V]
	nextObs   uint64

	stopBus func()
}

func newCell[V any](ctx context.Context, key string, opts Options[V]) (*Cell[V], error) {
	if opts.Provider == nil {
		return nil, ErrNilProvider
	}
	if opts.Codec == nil {
		return nil, ErrNilCodec
	}
	if key == "" {
		return nil, ErrEmptyKey
	}

	c := &Cell[V]{
		key:      key,
		skey:     util.StorageKey(opts.Prefix, key, opts.NoPrefix),
		provider: opts.Provider,
		codec:    opts.Codec,
		absent:   opts.Absent,
		ttl:      opts.TTL,
		bus:      opts.Notifier,
		revs:     opts.RevStore,
	}
	c.origin = coalesce(opts.Origin, uuid.NewString())
	c.log = withFields(coalesce[Logger](opts.Logger, NopLogger{}), Fields{"key": c.skey, "origin": c.origin})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	c.mu.Lock()
	err := c.loadLocked(ctx)
	var initCh *notify.Change
	if err == nil && !c.ok && opts.Initial != nil && !c.isAbsent(*opts.Initial) {
		initCh, err = c.commitLocked(ctx, *opts.Initial, true)
	}
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if c.bus != nil {
		stop, err := c.bus.Subscribe(ctx, c.onChange)
		if err != nil {
			return nil, fmt.Errorf("kvcell: subscribe %q: %w", c.skey, err)
		}
		c.stopBus = stop
	}
	if initCh != nil {
		c.publish(ctx, *initCh)
	}
	return c, nil
}

// Key returns the key the cell was created with.
func (c *Cell[V]) Key() string { return c.key }

// StorageKey returns the provider key, prefix included.
func (c *Cell[V]) StorageKey() string { return c.skey }

// Origin returns the identity stamped on published changes.
func (c *Cell[V]) Origin() string { return c.origin }

// Get returns the current value. ok=false means nothing is stored.
func (c *Cell[V]) Get() (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val, c.ok
}

// Set encodes v once, writes it and publishes the change. Setting an absent
// value is Remove.
func (c *Cell[V]) Set(ctx context.Context, v V) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	ch, err := c.commitLocked(ctx, v, !c.isAbsent(v))
	val, ok := c.val, c.ok
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.emit(val, ok)
	c.publish(ctx, *ch)
	return nil
}

// Remove deletes the entry and publishes the deletion.
func (c *Cell[V]) Remove(ctx context.Context) error {
	var zero V
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	ch, err := c.commitLocked(ctx, zero, false)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.emit(zero, false)
	c.publish(ctx, *ch)
	return nil
}

// Update runs fn with the current value under the cell lock and stores its
// result; ok=false from fn removes the entry. fn must not call back into the
// cell.
func (c *Cell[V]) Update(ctx context.Context, fn func(cur V, ok bool) (V, bool)) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	next, keep := fn(c.val, c.ok)
	ch, err := c.commitLocked(ctx, next, keep && !c.isAbsent(next))
	val, ok := c.val, c.ok
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.emit(val, ok)
	c.publish(ctx, *ch)
	return nil
}

// Reload repeats the cold read and notifies observers with the result.
func (c *Cell[V]) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	err := c.loadLocked(ctx)
	val, ok := c.val, c.ok
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.emit(val, ok)
	return nil
}

// Subscribe registers fn for every change, local or external. stop is
// idempotent.
func (c *Cell[V]) Subscribe(fn func(v V, ok bool)) (stop func()) {
	c.obsMu.Lock()
	c.nextObs++
	id := c.nextObs
	c.observers = append(c.observers, observer[V]{id: id, fn: fn})
	c.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.obsMu.Lock()
			defer c.obsMu.Unlock()
			for i, o := range c.observers {
				if o.id == id {
					c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// Close stops the notification subscription and drops all observers. The
// provider, bus and revision store are shared and stay open. Get keeps
// returning the last value; writes fail with ErrClosed.
func (c *Cell[V]) Close(context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	stop := c.stopBus
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	c.obsMu.Lock()
	c.observers = nil
	c.obsMu.Unlock()
	return nil
}

func (c *Cell[V]) isAbsent(v V) bool {
	return c.absent != nil && c.absent(v)
}

// loadLocked reads and decodes the stored entry. Corrupt entries are deleted
// and read as absent. c.mu must be held.
func (c *Cell[V]) loadLocked(ctx context.Context) error {
	var zero V
	if c.revs != nil {
		rev, err := c.revs.Current(ctx, c.skey)
		if err != nil {
			c.hooks.RevError(c.skey, err)
			c.log.Warn("revision read failed", Fields{"err": err})
		} else {
			c.lastRev = rev
		}
	}

	raw, hit, err := c.provider.Get(ctx, c.skey)
	if err != nil {
		return &StoreError{Key: c.skey, Op: "get", Err: err}
	}
	if !hit {
		c.val, c.ok = zero, false
		return nil
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		if delErr := c.provider.Del(ctx, c.skey); delErr != nil {
			c.log.Warn("self-heal delete failed", Fields{"err": delErr})
		}
		c.hooks.SelfHeal(c.skey, "decode")
		c.log.Warn("corrupt entry dropped", Fields{"err": err})
		c.val, c.ok = zero, false
		return nil
	}
	if c.isAbsent(v) {
		c.val, c.ok = zero, false
		return nil
	}
	c.val, c.ok = v, true
	return nil
}

// commitLocked persists v (or deletes the entry when !present), advances the
// revision and updates the in-memory value. It returns the change to publish
// once the lock is released. c.mu must be held.
func (c *Cell[V]) commitLocked(ctx context.Context, v V, present bool) (*notify.Change, error) {
	ch := &notify.Change{Key: c.skey, Origin: c.origin}
	if present {
		raw, err := c.codec.Encode(v)
		if err != nil {
			return nil, err
		}
		ok, err := c.provider.Set(ctx, c.skey, raw, int64(len(raw)), c.ttl)
		if err != nil {
			return nil, &StoreError{Key: c.skey, Op: "set", Err: err}
		}
		if !ok {
			c.hooks.ProviderSetRejected(c.skey)
			c.log.Debug("write rejected by provider (pressure)", nil)
		}
		ch.Value = raw
	} else {
		if err := c.provider.Del(ctx, c.skey); err != nil {
			return nil, &StoreError{Key: c.skey, Op: "del", Err: err}
		}
		var zero V
		v = zero
		ch.Deleted = true
	}

	if c.revs != nil {
		rev, err := c.revs.Bump(ctx, c.skey)
		if err != nil {
			c.hooks.RevError(c.skey, err)
			c.log.Warn("revision bump failed", Fields{"err": err})
		} else {
			ch.Rev = rev
			if rev > c.lastRev {
				c.lastRev = rev
			}
		}
	}
	c.val, c.ok = v, present
	return ch, nil
}

func (c *Cell[V]) publish(ctx context.Context, ch notify.Change) {
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(ctx, ch); err != nil {
		c.hooks.PublishError(c.skey, err)
		c.log.Warn("publish failed", Fields{"err": err})
	}
}

// onChange applies a change published by another writer of the same key.
func (c *Cell[V]) onChange(ch notify.Change) {
	if ch.Key != c.skey {
		return
	}
	if ch.Origin == c.origin {
		c.hooks.ChangeDropped(c.skey, "echo")
		return
	}

	var zero V
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if last := c.lastRev; ch.Rev != 0 && ch.Rev <= last {
		c.mu.Unlock()
		c.hooks.ChangeDropped(c.skey, "stale")
		c.log.Debug("stale change dropped", Fields{"rev": ch.Rev, "last": last})
		return
	}

	val, ok := zero, false
	if !ch.Deleted {
		v, err := c.codec.Decode(ch.Value)
		if err != nil {
			c.mu.Unlock()
			c.hooks.ChangeDropped(c.skey, "decode")
			c.log.Warn("undecodable change dropped", Fields{"from": ch.Origin, "err": err})
			return
		}
		if !c.isAbsent(v) {
			val, ok = v, true
		}
	}
	c.val, c.ok = val, ok
	if ch.Rev > c.lastRev {
		c.lastRev = ch.Rev
	}
	c.mu.Unlock()

	c.emit(val, ok)
}

func (c *Cell[V]) emit(v V, ok bool) {
	c.obsMu.Lock()
	obs := make([]observer[V], len(c.observers))
	copy(obs, c.observers)
	c.obsMu.Unlock()

	for _, o := range obs {
		o.fn(v, ok)
	}
}
