package models

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the number of lamports in one SOL
const LamportsPerSOL = 1_000_000_000

// AccountSnapshot is the normalized result of one successful wallet fetch.
// It is built once per fetch and never persisted.
type AccountSnapshot struct {
	Address           string          `json:"address"`
	Lamports          uint64          `json:"lamports"`
	Balance           decimal.Decimal `json:"balance"` // SOL
	TxCount           int             `json:"txCount"`
	FailedTxCount     int             `json:"failedTxCount"`
	TokenAccountCount int             `json:"tokenAccountCount"`
	DaysActive        int             `json:"daysActive"`
	OldestActivity    *time.Time      `json:"oldestActivity,omitempty"`
	IsDust            bool            `json:"isDust"`
	IsWhale           bool            `json:"isWhale"`
	FetchedAt         time.Time       `json:"fetchedAt"`

	// Diagnostics, kept out of responses
	Endpoint string `json:"-"`
	Attempts int    `json:"-"`
}

// LamportsToSOL converts a raw lamport amount to SOL
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9)
}
