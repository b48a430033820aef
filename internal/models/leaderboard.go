package models

import "time"

// HourID returns the leaderboard window identifier for t: whole hours since the epoch.
func HourID(t time.Time) int64 {
	return t.Unix() / 3600
}

// LeaderboardEntry is one submission. Wallet is the identity key within a bucket.
type LeaderboardEntry struct {
	Wallet         string `json:"wallet"`
	WinRate        int    `json:"winRate"`
	PaperHandScore int    `json:"paperHandScore"`
	RugPulls       int    `json:"rugPulls"` // ranking metric
	Roast          string `json:"roast"`
	Diagnosis      string `json:"diagnosis,omitempty"`
	Timestamp      int64  `json:"timestamp"` // unix millis
}

// Bucket is the current hour's submissions plus the all-time submission counter.
type Bucket struct {
	HourID      int64              `json:"hourId"`
	Data        []LeaderboardEntry `json:"data"`
	GlobalCount int64              `json:"globalCount"`
}

// ArchivedWinner is the top entry of the most recently rotated-out bucket.
type ArchivedWinner struct {
	Wallet    string `json:"wallet"`
	RugPulls  int    `json:"rugPulls"`
	HourID    int64  `json:"hourId"`
	Timestamp int64  `json:"timestamp"` // unix millis
}
