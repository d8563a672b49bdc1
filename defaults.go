package kvcell

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// Ptr returns a pointer to v, for Options.Initial.
func Ptr[V any](v V) *V { return &v }
