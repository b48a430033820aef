package storage

import (
	"context"
	"errors"

	"github.com/wallet-roaster/internal/circuitbreaker"
	"github.com/wallet-roaster/internal/config"
)

// GuardedStore puts a circuit breaker in front of a BlobStore so a dead
// backend is skipped quickly instead of costing a dial timeout per request.
type GuardedStore struct {
	inner   BlobStore
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedStore wraps inner with a breaker configured from cfg
func NewGuardedStore(inner BlobStore, name string, cfg config.BreakerConfig) *GuardedStore {
	return &GuardedStore{
		inner: inner,
		breaker: circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
			Name:        name,
			MaxFailures: cfg.MaxFailures,
			Timeout:     cfg.Timeout,
			IsFailure:   isBackendFailure,
		}),
	}
}

// isBackendFailure excludes outcomes that say nothing about backend health
func isBackendFailure(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrUpdateUnsupported),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

// Get reads key through the breaker
func (g *GuardedStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		value, err = g.inner.Get(ctx, key)
		return err
	})
	return value, err
}

// Set writes key through the breaker
func (g *GuardedStore) Set(ctx context.Context, key string, value []byte) error {
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return g.inner.Set(ctx, key, value)
	})
}

// Update delegates to the inner store when it supports atomic updates
func (g *GuardedStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	updater, ok := g.inner.(Updater)
	if !ok {
		return ErrUpdateUnsupported
	}
	return g.breaker.Execute(ctx, func(ctx context.Context) error {
		return updater.Update(ctx, key, fn)
	})
}

// State reports the breaker state for health output
func (g *GuardedStore) State() circuitbreaker.State {
	return g.breaker.GetState()
}

// Close closes the inner store if it holds resources
func (g *GuardedStore) Close() error {
	if c, ok := g.inner.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
