// Package notify carries change notifications between cells: the signal that
// another writer replaced or removed the entry under a storage key.
//
// Two buses are provided. Local is an explicitly owned in-process registry;
// construct one and hand it to every cell that should see the others'
// writes. Redis fans changes out across processes over pub/sub.
package notify

import "context"

// Change describes one write to a storage key.
type Change struct {
	Key     string // storage key, prefix included
	Value   []byte // encoded entry; nil when Deleted
	Deleted bool
	Origin  string // writer identity, used to drop own echoes
	Rev     uint64 // 0 => unordered
}

// Handler receives changes. Handlers must not block for long; Local calls
// them on the publishing goroutine, Redis on its receive goroutine.
type Handler func(Change)

// Bus publishes changes and delivers them to every subscriber, the publisher
// included.
type Bus interface {
	Publish(ctx context.Context, c Change) error
	// Subscribe registers h for changes on every key. stop is idempotent.
	Subscribe(ctx context.Context, h Handler) (stop func(), err error)
	Close(ctx context.Context) error
}
