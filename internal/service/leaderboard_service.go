package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/wallet-roaster/internal/config"
	"github.com/wallet-roaster/internal/errors"
	"github.com/wallet-roaster/internal/logging"
	"github.com/wallet-roaster/internal/metrics"
	"github.com/wallet-roaster/internal/models"
	"github.com/wallet-roaster/internal/storage"
)

// LeaderboardConfig holds keys and caps for the leaderboard
type LeaderboardConfig struct {
	BucketKey    string
	WinnerKey    string
	RetainedCap  int
	VisibleCap   int
	AtomicSubmit bool
	MaxCASTries  int
}

// LeaderboardConfigFrom builds the leaderboard configuration from loaded store config
func LeaderboardConfigFrom(cfg config.StoreConfig) LeaderboardConfig {
	return LeaderboardConfig{
		BucketKey:    cfg.BucketKey,
		WinnerKey:    cfg.WinnerKey,
		RetainedCap:  cfg.RetainedCap,
		VisibleCap:   cfg.VisibleCap,
		AtomicSubmit: cfg.AtomicSubmit,
		MaxCASTries:  cfg.MaxCASTries,
	}
}

// Submission is what a client posts to the leaderboard
type Submission struct {
	Wallet         string
	Roast          string
	RugPulls       int
	WinRate        int
	PaperHandScore int
	Diagnosis      string
}

// Bounds for a submitted paperHandScore
const (
	MinPaperHandScore = 0
	MaxPaperHandScore = 100
)

// Validate checks the wallet is present and the stats are within range
func (sub Submission) Validate() error {
	switch {
	case sub.Wallet == "":
		return errors.NewMissingRequiredFieldError("wallet")
	case sub.RugPulls < 0:
		return errors.NewInvalidFieldError("rugPulls", sub.RugPulls, "a non-negative integer")
	case sub.PaperHandScore < MinPaperHandScore || sub.PaperHandScore > MaxPaperHandScore:
		return errors.NewInvalidFieldError("paperHandScore", sub.PaperHandScore,
			fmt.Sprintf("between %d and %d", MinPaperHandScore, MaxPaperHandScore))
	case sub.WinRate < 0:
		return errors.NewInvalidFieldError("winRate", sub.WinRate, "a non-negative integer")
	}
	return nil
}

// LeaderboardService keeps the hourly leaderboard in a BlobStore.
//
// Store failures never reach callers: reads degrade to an empty bucket with
// a zero counter, writes are dropped, and the failure is logged and counted.
//
// In the default mode Submit is a plain read-modify-write, so two concurrent
// submits can lose one update. AtomicSubmit switches to compare-and-set on
// stores implementing storage.Updater.
type LeaderboardService struct {
	store storage.BlobStore
	cfg   LeaderboardConfig
	now   func() time.Time
}

// NewLeaderboardService creates a leaderboard over store
func NewLeaderboardService(store storage.BlobStore, cfg LeaderboardConfig) *LeaderboardService {
	if cfg.MaxCASTries <= 0 {
		cfg.MaxCASTries = 1
	}
	return &LeaderboardService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// SetClock overrides the time source
func (s *LeaderboardService) SetClock(now func() time.Time) {
	s.now = now
}

// Read returns the current hour's bucket. When the stored bucket belongs to an
// earlier hour its top entry is archived as the last winner and an empty
// bucket carrying the old counter is returned. The bucket is not written back.
func (s *LeaderboardService) Read(ctx context.Context) models.Bucket {
	hour := models.HourID(s.now())

	raw, err := s.store.Get(ctx, s.cfg.BucketKey)
	if stderrors.Is(err, storage.ErrNotFound) {
		return emptyBucket(hour, 0)
	}
	if err != nil {
		s.degrade(ctx, "read", err)
		return emptyBucket(hour, 0)
	}

	bucket, rotated := s.normalize(ctx, raw, hour)
	s.commitRotation(ctx, rotated)
	return bucket
}

// rotation records a bucket replaced because its hour has passed
type rotation struct {
	hourID int64
	winner *models.LeaderboardEntry
}

// normalize decodes a stored value and applies window rotation. It performs
// no store calls; a non-nil rotation must be passed to commitRotation.
func (s *LeaderboardService) normalize(ctx context.Context, raw []byte, hour int64) (models.Bucket, *rotation) {
	stored, format, err := storage.DecodeBucket(raw)
	if err != nil {
		s.degrade(ctx, "decode", err)
		return emptyBucket(hour, 0), nil
	}

	switch format {
	case storage.FormatAbsent:
		return emptyBucket(hour, 0), nil
	case storage.FormatLegacy:
		logging.FromContext(ctx).WithField("key", s.cfg.BucketKey).Info("Legacy leaderboard value found, starting fresh bucket")
		return emptyBucket(hour, 0), nil
	}

	if stored.HourID == hour {
		if stored.Data == nil {
			stored.Data = []models.LeaderboardEntry{}
		}
		return stored, nil
	}

	rotated := &rotation{hourID: stored.HourID}
	if winner, ok := topEntry(stored.Data); ok {
		rotated.winner = &winner
	}
	return emptyBucket(hour, stored.GlobalCount), rotated
}

// commitRotation counts a rotation and archives its winner, if any
func (s *LeaderboardService) commitRotation(ctx context.Context, r *rotation) {
	if r == nil {
		return
	}
	metrics.LeaderboardRotations.Inc()
	if r.winner != nil {
		s.archive(ctx, *r.winner, r.hourID)
	}
}

// archive overwrites the last winner. Failures are logged only.
func (s *LeaderboardService) archive(ctx context.Context, winner models.LeaderboardEntry, hourID int64) {
	raw, err := storage.EncodeWinner(&models.ArchivedWinner{
		Wallet:    winner.Wallet,
		RugPulls:  winner.RugPulls,
		HourID:    hourID,
		Timestamp: s.now().UnixMilli(),
	})
	if err == nil {
		err = s.store.Set(ctx, s.cfg.WinnerKey, raw)
	}
	if err != nil {
		s.degrade(ctx, "archive", err)
		return
	}

	logging.FromContext(ctx).WithFields(map[string]interface{}{
		"wallet":   winner.Wallet,
		"rugPulls": winner.RugPulls,
		"hourId":   hourID,
	}).Info("Archived last winner")
}

// Top returns the visible ranked slice and the global counter
func (s *LeaderboardService) Top(ctx context.Context) ([]models.LeaderboardEntry, int64) {
	bucket := s.Read(ctx)
	data := append([]models.LeaderboardEntry(nil), bucket.Data...)
	rankEntries(data)
	return visibleSlice(data, s.cfg.VisibleCap), bucket.GlobalCount
}

// Submit records sub in the current bucket and returns the visible slice and
// the new counter. Only an invalid submission returns an error; nothing is
// written for it.
func (s *LeaderboardService) Submit(ctx context.Context, sub Submission) ([]models.LeaderboardEntry, int64, error) {
	if err := sub.Validate(); err != nil {
		return nil, 0, err
	}

	entry := models.LeaderboardEntry{
		Wallet:         sub.Wallet,
		WinRate:        sub.WinRate,
		PaperHandScore: sub.PaperHandScore,
		RugPulls:       sub.RugPulls,
		Roast:          sub.Roast,
		Diagnosis:      sub.Diagnosis,
		Timestamp:      s.now().UnixMilli(),
	}

	var next models.Bucket
	if s.cfg.AtomicSubmit {
		var handled bool
		next, handled = s.submitAtomic(ctx, entry)
		if !handled {
			next = s.submitBestEffort(ctx, entry)
		}
	} else {
		next = s.submitBestEffort(ctx, entry)
	}

	metrics.LeaderboardSubmissions.Inc()
	return visibleSlice(next.Data, s.cfg.VisibleCap), next.GlobalCount, nil
}

func (s *LeaderboardService) submitBestEffort(ctx context.Context, entry models.LeaderboardEntry) models.Bucket {
	next := applySubmission(s.Read(ctx), entry, s.cfg.RetainedCap)

	raw, err := storage.EncodeBucket(next)
	if err == nil {
		err = s.store.Set(ctx, s.cfg.BucketKey, raw)
	}
	if err != nil {
		s.degrade(ctx, "write", err)
	}
	return next
}

// submitAtomic applies the submission with compare-and-set, retrying on
// conflict. handled is false when the store cannot do atomic updates.
// A displaced winner is archived after the update commits, never inside it.
func (s *LeaderboardService) submitAtomic(ctx context.Context, entry models.LeaderboardEntry) (next models.Bucket, handled bool) {
	updater, ok := s.store.(storage.Updater)
	if !ok {
		return models.Bucket{}, false
	}

	hour := models.HourID(s.now())
	computed := false
	var rotated *rotation

	var err error
	for try := 1; try <= s.cfg.MaxCASTries; try++ {
		err = updater.Update(ctx, s.cfg.BucketKey, func(current []byte, found bool) ([]byte, error) {
			bucket := emptyBucket(hour, 0)
			rotated = nil
			if found {
				bucket, rotated = s.normalize(ctx, current, hour)
			}
			next = applySubmission(bucket, entry, s.cfg.RetainedCap)
			computed = true
			return storage.EncodeBucket(next)
		})
		if !stderrors.Is(err, storage.ErrConflict) {
			break
		}
		metrics.CASConflicts.Inc()
	}

	switch {
	case err == nil:
		s.commitRotation(ctx, rotated)
		return next, true
	case stderrors.Is(err, storage.ErrUpdateUnsupported):
		return models.Bucket{}, false
	case stderrors.Is(err, storage.ErrConflict):
		err = fmt.Errorf("gave up after %d tries: %w", s.cfg.MaxCASTries, err)
	}

	s.degrade(ctx, "update", err)
	if !computed {
		next = applySubmission(emptyBucket(hour, 0), entry, s.cfg.RetainedCap)
	}
	return next, true
}

// LastWinner returns the archived winner of the most recent rotated window
func (s *LeaderboardService) LastWinner(ctx context.Context) (*models.ArchivedWinner, bool) {
	raw, err := s.store.Get(ctx, s.cfg.WinnerKey)
	if stderrors.Is(err, storage.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.degrade(ctx, "last_winner", err)
		return nil, false
	}

	winner, err := storage.DecodeWinner(raw)
	if err != nil {
		s.degrade(ctx, "decode", err)
		return nil, false
	}
	return winner, true
}

func (s *LeaderboardService) degrade(ctx context.Context, operation string, cause error) {
	metrics.StoreErrors.WithLabelValues(operation).Inc()
	logging.FromContext(ctx).
		WithError(errors.NewStoreUnavailableError(operation, cause)).
		WithField("operation", operation).
		Warn("Leaderboard store failure, degrading")
}

func emptyBucket(hour, globalCount int64) models.Bucket {
	return models.Bucket{
		HourID:      hour,
		Data:        []models.LeaderboardEntry{},
		GlobalCount: globalCount,
	}
}
