package adapter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wallet-roaster/internal/config"
	"github.com/wallet-roaster/internal/errors"
	"github.com/wallet-roaster/internal/logging"
	"github.com/wallet-roaster/internal/metrics"
	"github.com/wallet-roaster/internal/models"
	"github.com/wallet-roaster/internal/retry"
)

// FetcherConfig is the fetch policy
type FetcherConfig struct {
	RetryBudget    int           // extra attempts per endpoint after the first
	RetryDelay     time.Duration // wait between attempts on the same endpoint
	AttemptTimeout time.Duration // bound on one attempt; 0 disables
	SignatureLimit int
	DustThreshold  decimal.Decimal
	WhaleThreshold decimal.Decimal
	TokenProgramID string
}

// FetcherConfigFrom builds the fetch policy from loaded configuration
func FetcherConfigFrom(cfg config.SolanaConfig) FetcherConfig {
	return FetcherConfig{
		RetryBudget:    cfg.RetryBudget,
		RetryDelay:     cfg.RetryDelay,
		AttemptTimeout: cfg.AttemptTimeout,
		SignatureLimit: cfg.SignatureLimit,
		DustThreshold:  cfg.DustThreshold,
		WhaleThreshold: cfg.WhaleThreshold,
		TokenProgramID: cfg.TokenProgramID,
	}
}

// Fetcher produces AccountSnapshots, walking the endpoint pool in order and
// retrying each endpoint with a fixed delay before moving to the next.
// Logging goes to the logger carried by the request context.
type Fetcher struct {
	pool *EndpointPool
	cfg  FetcherConfig
	now  func() time.Time
}

// NewFetcher creates a fetcher over pool
func NewFetcher(pool *EndpointPool, cfg FetcherConfig) *Fetcher {
	return &Fetcher{
		pool: pool,
		cfg:  cfg,
		now:  time.Now,
	}
}

// SetClock overrides the time source used for account age
func (f *Fetcher) SetClock(now func() time.Time) {
	f.now = now
}

// Fetch returns the snapshot from the first endpoint that answers all three
// queries. It fails fast on a malformed address, returns the context error if
// ctx ends, and otherwise reports AllEndpointsExhausted once every endpoint
// has used its budget.
func (f *Fetcher) Fetch(ctx context.Context, address string) (*models.AccountSnapshot, error) {
	if err := ValidateAddress(address); err != nil {
		metrics.FetchResults.WithLabelValues("invalid").Inc()
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.FetchLatency.Observe(time.Since(start).Seconds())
	}()

	logger := logging.FromContext(ctx).WithField("address", address)

	policy := retry.FixedDelayConfig(f.cfg.RetryBudget, f.cfg.RetryDelay)
	policy.ShouldRetry = errors.IsRetryable
	totalAttempts := 0
	var lastErr error

	for i := 0; i < f.pool.Len(); i++ {
		endpoint := RedactEndpoint(f.pool.Endpoint(i))
		label := strconv.Itoa(i)
		epLogger := logger.WithFields(map[string]interface{}{
			"endpoint":      endpoint,
			"endpointIndex": i,
		})

		var snapshot *models.AccountSnapshot
		result := retry.Do(logging.WithLogger(ctx, epLogger), policy, func(ctx context.Context, attempt int) error {
			totalAttempts++

			snap, err := f.attempt(ctx, i, address)
			if err != nil {
				metrics.FetchAttempts.WithLabelValues(label, "failure").Inc()
				return errors.NewTransientProviderError(endpoint, attempt, err)
			}

			metrics.FetchAttempts.WithLabelValues(label, "success").Inc()
			snapshot = snap
			return nil
		})

		if result.Success {
			snapshot.Endpoint = endpoint
			snapshot.Attempts = totalAttempts
			metrics.FetchResults.WithLabelValues("success").Inc()
			epLogger.WithField("attempts", totalAttempts).Debug("Wallet fetched")
			return snapshot, nil
		}

		if err := ctx.Err(); err != nil {
			metrics.FetchResults.WithLabelValues("cancelled").Inc()
			return nil, err
		}

		lastErr = result.LastError
		epLogger.WithError(lastErr).Warn("Endpoint exhausted, moving to next")
	}

	metrics.FetchResults.WithLabelValues("exhausted").Inc()
	logger.WithError(lastErr).WithField("attempts", totalAttempts).Error("All RPC endpoints failed")
	return nil, errors.NewAllEndpointsExhaustedError(f.pool.Len(), totalAttempts, lastErr)
}

// attempt runs the three queries against one endpoint. Any failure fails the whole attempt.
func (f *Fetcher) attempt(ctx context.Context, index int, address string) (*models.AccountSnapshot, error) {
	if f.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.AttemptTimeout)
		defer cancel()
	}

	provider, err := f.pool.Provider(ctx, index)
	if err != nil {
		return nil, err
	}

	lamports, err := provider.GetBalance(ctx, address)
	if err != nil {
		return nil, err
	}

	signatures, err := provider.GetSignaturesForAddress(ctx, address, f.cfg.SignatureLimit)
	if err != nil {
		return nil, err
	}
	if len(signatures) > f.cfg.SignatureLimit {
		signatures = signatures[:f.cfg.SignatureLimit]
	}

	tokenAccounts, err := provider.GetTokenAccountCount(ctx, address, f.cfg.TokenProgramID)
	if err != nil {
		return nil, err
	}

	return f.buildSnapshot(address, lamports, signatures, tokenAccounts), nil
}

func (f *Fetcher) buildSnapshot(address string, lamports uint64, signatures []SignatureInfo, tokenAccounts int) *models.AccountSnapshot {
	now := f.now()
	balance := models.LamportsToSOL(lamports)

	snapshot := &models.AccountSnapshot{
		Address:           address,
		Lamports:          lamports,
		Balance:           balance,
		TxCount:           len(signatures),
		TokenAccountCount: tokenAccounts,
		IsDust:            balance.LessThan(f.cfg.DustThreshold),
		IsWhale:           balance.GreaterThan(f.cfg.WhaleThreshold),
		FetchedAt:         now,
	}

	var oldest *int64
	for i := range signatures {
		sig := signatures[i]
		if sig.Failed() {
			snapshot.FailedTxCount++
		}
		if sig.BlockTime != nil && (oldest == nil || *sig.BlockTime < *oldest) {
			oldest = sig.BlockTime
		}
	}

	if oldest != nil {
		first := time.Unix(*oldest, 0).UTC()
		snapshot.OldestActivity = &first
		if days := int(now.Sub(first) / (24 * time.Hour)); days > 0 {
			snapshot.DaysActive = days
		}
	}

	return snapshot
}

// String describes the policy for startup logs
func (c FetcherConfig) String() string {
	return fmt.Sprintf("budget=%d delay=%s timeout=%s limit=%d", c.RetryBudget, c.RetryDelay, c.AttemptTimeout, c.SignatureLimit)
}
