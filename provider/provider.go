// Package provider defines the string-keyed byte store a Cell persists into.
//
// Implementations MUST be byte-for-byte transparent: Get returns exactly the
// []byte previously passed to Set for a key. Stores that transform values
// internally (compression, encryption) must fully reverse the transform.
//
// Keys are built by the cell as "<prefix>-<key>" unless prefixing is disabled.
// Several cells may share one provider; each owns only its own key.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs. It must be safe for concurrent
// use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL (<= 0 means no expiry). Stores that
	// weigh entries use cost; others ignore it.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
