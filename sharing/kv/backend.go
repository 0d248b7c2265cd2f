// Package kv holds the key-value backends used by app-storage shared cells.
//
// A Backend stores opaque bytes under string keys. Values are encoded by the
// caller; backends never inspect them.
package kv

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("kv backend closed")

// Backend is a byte-oriented key-value store.
type Backend interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
