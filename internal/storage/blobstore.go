// Package storage provides the keyed blob stores backing the leaderboard.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when the key holds no value
	ErrNotFound = errors.New("blob not found")
	// ErrConflict is returned by Update when a concurrent writer won the race
	ErrConflict = errors.New("blob modified concurrently")
	// ErrUpdateUnsupported is returned by Update when the backend has no compare-and-set
	ErrUpdateUnsupported = errors.New("atomic update not supported by store")
	// ErrStoreDisabled is returned by every operation of the disabled store
	ErrStoreDisabled = errors.New("blob store disabled")
)

// BlobStore is a keyed get/set store. Set overwrites the whole value.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// UpdateFunc computes the next value of a key from its current one.
// found is false when the key is absent; current is nil in that case.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

// Updater is implemented by stores that can apply an UpdateFunc atomically.
// Update returns ErrConflict when another writer changed the key between
// the read and the write; the caller decides whether to retry.
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// DisabledStore is used when no backend is configured. Every call fails,
// which the leaderboard treats like any other store outage.
type DisabledStore struct{}

// Get always fails with ErrStoreDisabled
func (DisabledStore) Get(context.Context, string) ([]byte, error) {
	return nil, ErrStoreDisabled
}

// Set always fails with ErrStoreDisabled
func (DisabledStore) Set(context.Context, string, []byte) error {
	return ErrStoreDisabled
}

// Close is a no-op
func (DisabledStore) Close() error {
	return nil
}
