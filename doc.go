// Package kvcell persists a single typed value under a string key and keeps
// it in sync with other writers of the same key.
//
// A Cell loads its value once at construction, writes every mutation through
// a Codec into a Provider, and applies changes that other cells publish on a
// shared notify.Bus. Observers registered with Subscribe see both.
//
// Components:
//   - Provider: string-keyed byte store (memory, SQLite, Redis, BigCache, Ristretto).
//   - Codec[V]: V <-> []byte. NewValue uses codec.Tagged, the kind-tagged
//     envelope {"data":"<payload>","type":"<kind>"}.
//   - notify.Bus: change notifications. Local for one process, Redis across processes.
//   - RevStore: per-key revisions that order writes against notifications.
//
// Keys:
//
//	<prefix>-<key>   prefix defaults to "sky-hooks"; Options.NoPrefix stores under key
//
// Usage:
//
//	bus := notify.NewLocal()
//	theme, _ := kvcell.NewValue(ctx, "theme", kvcell.Options[codec.Value]{
//	    Provider: memory.New(),
//	    Notifier: bus,
//	    Initial:  kvcell.Ptr[codec.Value](codec.String("light")),
//	})
//	defer theme.Close(ctx)
//	_ = theme.Set(ctx, codec.String("dark"))
package kvcell
