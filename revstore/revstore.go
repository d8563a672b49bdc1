// Package revstore keeps per-key revision counters. A cell bumps the counter
// of its storage key on every write and stamps the revision into the change
// it publishes; receivers drop changes that are not newer than the last one
// they applied.
//
// Revisions are only comparable between cells that share a RevStore. Cells in
// different processes must use a shared store (Redis) for ordering to hold.
package revstore

import (
	"context"
	"time"
)

// RevStore abstracts where revisions live.
type RevStore interface {
	// Current returns the current revision; missing => 0.
	Current(ctx context.Context, storageKey string) (uint64, error)
	// Bump atomically increments and returns the new revision.
	Bump(ctx context.Context, storageKey string) (uint64, error)
	// Cleanup prunes old metadata if applicable (no-op for Redis).
	Cleanup(retention time.Duration)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
