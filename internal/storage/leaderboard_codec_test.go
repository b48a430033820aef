package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-roaster/internal/models"
)

func TestDecodeBucket(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantFormat BucketFormat
		wantBucket models.Bucket
		wantErr    bool
	}{
		{name: "empty", raw: "", wantFormat: FormatAbsent},
		{name: "json null", raw: " null ", wantFormat: FormatAbsent},
		{
			name:       "legacy flat array",
			raw:        `[{"wallet":"A","rugPulls":9},{"wallet":"B","rugPulls":3}]`,
			wantFormat: FormatLegacy,
		},
		{name: "empty legacy array", raw: `[]`, wantFormat: FormatLegacy},
		{
			name:       "current",
			raw:        `{"hourId":490000,"data":[{"wallet":"A","rugPulls":9,"winRate":1,"paperHandScore":80,"roast":"r","timestamp":5}],"globalCount":12}`,
			wantFormat: FormatCurrent,
			wantBucket: models.Bucket{
				HourID:      490000,
				GlobalCount: 12,
				Data: []models.LeaderboardEntry{
					{Wallet: "A", RugPulls: 9, WinRate: 1, PaperHandScore: 80, Roast: "r", Timestamp: 5},
				},
			},
		},
		{
			name:       "current without counter",
			raw:        `{"hourId":7,"data":[]}`,
			wantFormat: FormatCurrent,
			wantBucket: models.Bucket{HourID: 7, Data: []models.LeaderboardEntry{}},
		},
		{name: "truncated object", raw: `{"hourId":`, wantErr: true},
		{name: "scalar", raw: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, format, err := DecodeBucket([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, FormatAbsent, format)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormat, format)
			assert.Equal(t, tt.wantBucket, bucket)
		})
	}
}

func TestEncodeBucket_EmptyDataIsArray(t *testing.T) {
	raw, err := EncodeBucket(models.Bucket{HourID: 3, GlobalCount: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"hourId":3,"data":[],"globalCount":1}`, string(raw))
}

func TestWinnerCodec(t *testing.T) {
	raw, err := EncodeWinner(&models.ArchivedWinner{Wallet: "W", RugPulls: 4, HourID: 10, Timestamp: 99})
	require.NoError(t, err)
	assert.JSONEq(t, `{"wallet":"W","rugPulls":4,"hourId":10,"timestamp":99}`, string(raw))

	winner, err := DecodeWinner(raw)
	require.NoError(t, err)
	assert.Equal(t, "W", winner.Wallet)
	assert.Equal(t, int64(10), winner.HourID)

	_, err = DecodeWinner([]byte("not json"))
	assert.Error(t, err)
}

func TestBucketFormat_String(t *testing.T) {
	assert.Equal(t, "absent", FormatAbsent.String())
	assert.Equal(t, "legacy", FormatLegacy.String())
	assert.Equal(t, "current", FormatCurrent.String())
}
