package kvcell

import (
	"context"
	"time"

	"github.com/unkn0wn-root/kvcell/codec"
	"github.com/unkn0wn-root/kvcell/notify"
	pr "github.com/unkn0wn-root/kvcell/provider"
	"github.com/unkn0wn-root/kvcell/revstore"
)

// KeyedStore is the surface of a Cell, for callers that hold cells of
// several value types or want to fake one in tests.
type KeyedStore[V any] interface {
	Key() string
	StorageKey() string
	Get() (v V, ok bool)
	Set(ctx context.Context, v V) error
	Remove(ctx context.Context) error
	Update(ctx context.Context, fn func(cur V, ok bool) (V, bool)) error
	Reload(ctx context.Context) error
	Subscribe(fn func(v V, ok bool)) (stop func())
	Close(ctx context.Context) error
}

var _ KeyedStore[codec.Value] = (*Cell[codec.Value])(nil)

// Options configure a Cell. Only Provider and Codec are required (NewValue
// supplies the codec).
type Options[V any] struct {
	// Required
	Provider pr.Provider
	Codec    codec.Codec[V]

	Prefix   string // "" => "sky-hooks"; the storage key is "<prefix>-<key>"
	NoPrefix bool   // store under the bare key

	// Initial is applied and persisted when the store holds nothing for the key.
	Initial *V
	// Absent reports values that mean "no value". Setting one removes the
	// entry. nil => no value of V is absent.
	Absent func(V) bool

	TTL      time.Duration     // 0 => no expiry
	Notifier notify.Bus        // nil => no change notifications
	RevStore revstore.RevStore // nil => unordered; changes apply in arrival order
	Origin   string            // writer identity on the bus; "" => random UUID
	Logger   Logger            // nil => NopLogger
	Hooks    Hooks             // nil => NopHooks
}

// New loads the cell for key and, when a Notifier is set, subscribes it to
// changes from other writers.
func New[V any](ctx context.Context, key string, opts Options[V]) (*Cell[V], error) {
	return newCell(ctx, key, opts)
}

// NewValue is New for cells of classified values stored as kind-tagged
// envelopes. A nil Codec defaults to codec.Tagged{}; a nil Absent treats
// codec.Null (and nil) as absent, so setting null removes the entry.
func NewValue(ctx context.Context, key string, opts Options[codec.Value]) (*Cell[codec.Value], error) {
	if opts.Codec == nil {
		opts.Codec = codec.Tagged{}
	}
	if opts.Absent == nil {
		opts.Absent = IsNull
	}
	return newCell(ctx, key, opts)
}

// IsNull reports whether v is nil or codec.Null.
func IsNull(v codec.Value) bool {
	if v == nil {
		return true
	}
	_, null := v.(codec.Null)
	return null
}
