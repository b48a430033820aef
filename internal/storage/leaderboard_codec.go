package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/wallet-roaster/internal/models"
)

// BucketFormat identifies which shape a stored bucket value had
type BucketFormat int

const (
	// FormatAbsent means nothing usable was stored
	FormatAbsent BucketFormat = iota
	// FormatLegacy is the old bare array of entries with no hour or counter
	FormatLegacy
	// FormatCurrent is the {hourId, data, globalCount} object
	FormatCurrent
)

func (f BucketFormat) String() string {
	switch f {
	case FormatLegacy:
		return "legacy"
	case FormatCurrent:
		return "current"
	default:
		return "absent"
	}
}

// DecodeBucket normalizes a stored bucket value. Legacy arrays carry no
// hour or counter, so they decode to a zero bucket and the caller starts
// a fresh window with the counter at 0.
func DecodeBucket(raw []byte) (models.Bucket, BucketFormat, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return models.Bucket{}, FormatAbsent, nil
	}

	switch trimmed[0] {
	case '[':
		var legacy []json.RawMessage
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return models.Bucket{}, FormatAbsent, fmt.Errorf("malformed legacy bucket: %w", err)
		}
		return models.Bucket{}, FormatLegacy, nil
	case '{':
		var bucket models.Bucket
		if err := json.Unmarshal(trimmed, &bucket); err != nil {
			return models.Bucket{}, FormatAbsent, fmt.Errorf("malformed bucket: %w", err)
		}
		return bucket, FormatCurrent, nil
	default:
		return models.Bucket{}, FormatAbsent, fmt.Errorf("unrecognized bucket value starting with %q", trimmed[0])
	}
}

// EncodeBucket serializes a bucket in the current format
func EncodeBucket(bucket models.Bucket) ([]byte, error) {
	if bucket.Data == nil {
		bucket.Data = []models.LeaderboardEntry{}
	}
	return json.Marshal(bucket)
}

// DecodeWinner parses the archived winner value
func DecodeWinner(raw []byte) (*models.ArchivedWinner, error) {
	var winner models.ArchivedWinner
	if err := json.Unmarshal(raw, &winner); err != nil {
		return nil, fmt.Errorf("malformed winner: %w", err)
	}
	return &winner, nil
}

// EncodeWinner serializes the archived winner
func EncodeWinner(winner *models.ArchivedWinner) ([]byte, error) {
	return json.Marshal(winner)
}
