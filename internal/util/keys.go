package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// DefaultPrefix namespaces storage keys unless a cell overrides or disables it.
const DefaultPrefix = "sky-hooks"

// StorageKey returns "<prefix>-<key>", or key unchanged when noPrefix is set.
// An empty prefix means DefaultPrefix.
func StorageKey(prefix, key string, noPrefix bool) string {
	if noPrefix {
		return key
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "-" + key
}

// Redact returns a short stable fingerprint of a key for logs: the first
// 8 bytes of its SHA-256, hex encoded.
func Redact(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
