package kvcell

import (
	"errors"
	"fmt"
)

var (
	ErrNilProvider = errors.New("kvcell: provider is required")
	ErrNilCodec    = errors.New("kvcell: codec is required")
	ErrEmptyKey    = errors.New("kvcell: key is required")
	ErrClosed      = errors.New("kvcell: cell closed")
)

// StoreError reports a provider failure. Op is "get", "set" or "del".
type StoreError struct {
	Key string
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("kvcell: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
