// Package kv is the key-value slot abstraction the client state lives in:
// the cart, session tokens, catalog read caches and preparation records.
package kv

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("kv: key not found")
	// ErrConflict is returned when Update gave up because its context ended
	// while other writers kept winning the slot.
	ErrConflict = errors.New("kv: update abandoned under contention")
)

// UpdateFunc receives the current value (nil when the key is absent) and
// returns the value to store. Returning a nil value deletes the key.
type UpdateFunc func(current []byte) ([]byte, error)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; a zero ttl keeps the key until it is deleted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Update is an atomic read-modify-write of a single key. Concurrent
	// updates of the same key are serialized; none is lost.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
