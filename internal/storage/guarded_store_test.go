package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-roaster/internal/circuitbreaker"
	"github.com/wallet-roaster/internal/config"
)

// flakyStore fails every call with err until err is cleared
type flakyStore struct {
	err   error
	calls int
}

func (f *flakyStore) Get(context.Context, string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte("v"), nil
}

func (f *flakyStore) Set(context.Context, string, []byte) error {
	f.calls++
	return f.err
}

func TestGuardedStore_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyStore{err: errors.New("connection refused")}
	store := NewGuardedStore(inner, "test", config.BreakerConfig{MaxFailures: 2, Timeout: time.Minute})
	ctx := context.Background()

	_, err := store.Get(ctx, "k")
	require.Error(t, err)
	err = store.Set(ctx, "k", []byte("v"))
	require.Error(t, err)
	assert.Equal(t, circuitbreaker.StateOpen, store.State())

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls)
}

func TestGuardedStore_NotFoundIsNotAFailure(t *testing.T) {
	inner := &flakyStore{err: ErrNotFound}
	store := NewGuardedStore(inner, "test", config.BreakerConfig{MaxFailures: 1, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := store.Get(context.Background(), "k")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, circuitbreaker.StateClosed, store.State())
	assert.Equal(t, 3, inner.calls)
}

func TestGuardedStore_UpdateUnsupported(t *testing.T) {
	store := NewGuardedStore(&flakyStore{}, "test", config.BreakerConfig{MaxFailures: 1, Timeout: time.Minute})

	err := store.Update(context.Background(), "k", func([]byte, bool) ([]byte, error) {
		t.Fatal("update func must not run")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrUpdateUnsupported)
	assert.Equal(t, circuitbreaker.StateClosed, store.State())
}

func TestGuardedStore_DelegatesUpdate(t *testing.T) {
	redisStore, mr := setupRedisStore(t)
	store := NewGuardedStore(redisStore, "test", config.BreakerConfig{MaxFailures: 1, Timeout: time.Minute})

	err := store.Update(testContext(t), "k", func([]byte, bool) ([]byte, error) {
		return []byte("next"), nil
	})
	require.NoError(t, err)

	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "next", got)
}

func TestDisabledStore(t *testing.T) {
	var store DisabledStore
	_, err := store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrStoreDisabled)
	assert.ErrorIs(t, store.Set(context.Background(), "k", nil), ErrStoreDisabled)
	assert.NoError(t, store.Close())
}
