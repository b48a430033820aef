package storage

import (
	"fmt"

	"github.com/wallet-roaster/internal/config"
	"github.com/wallet-roaster/internal/logging"
	"github.com/wallet-roaster/internal/types"
)

// Open connects the backend selected in cfg and wraps it in a circuit breaker.
// A backend that cannot be reached is returned as an error; callers that want
// to keep serving can fall back to DisabledStore.
func Open(cfg *config.StoreConfig, logger *logging.Logger) (*GuardedStore, error) {
	var inner BlobStore

	switch cfg.Backend {
	case types.BackendRedis:
		store, err := NewRedisStore(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		inner = store
	case types.BackendPostgres:
		store, err := NewPostgresStore(&cfg.Postgres)
		if err != nil {
			return nil, err
		}
		inner = store
	case types.BackendNone:
		inner = DisabledStore{}
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Backend)
	}

	logger.WithField("backend", string(cfg.Backend)).Info("Leaderboard store ready")
	return NewGuardedStore(inner, "store-"+string(cfg.Backend), cfg.Breaker), nil
}
