package kvcell

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking; cells call them while
// serving reads, writes and notifications.
type Hooks interface {
	// A stored entry failed to decode and was deleted.
	// reason ∈ {"decode"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// An incoming change was not applied.
	// reason ∈ {"echo", "stale", "decode"}
	ChangeDropped(storageKey, reason string)

	// RevStore errors (current or bump). The cell proceeds unordered.
	RevError(storageKey string, err error)

	// Publishing a change failed; the write itself succeeded.
	PublishError(storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)      {}
func (NopHooks) ProviderSetRejected(string)   {}
func (NopHooks) ChangeDropped(string, string) {}
func (NopHooks) RevError(string, error)       {}
func (NopHooks) PublishError(string, error)   {}
