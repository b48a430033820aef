package service

import (
	"context"

	"github.com/wallet-roaster/internal/models"
)

// WalletFetcher loads an account snapshot
type WalletFetcher interface {
	Fetch(ctx context.Context, address string) (*models.AccountSnapshot, error)
}

// WalletService turns a fetched snapshot into a roast payload
type WalletService struct {
	fetcher WalletFetcher
}

// NewWalletService creates a new wallet service
func NewWalletService(fetcher WalletFetcher) *WalletService {
	return &WalletService{fetcher: fetcher}
}

// Roast fetches address and derives its stats and diagnosis
func (s *WalletService) Roast(ctx context.Context, address string) (*models.WalletRoast, error) {
	snapshot, err := s.fetcher.Fetch(ctx, address)
	if err != nil {
		return nil, err
	}

	return &models.WalletRoast{
		Wallet:    snapshot,
		Stats:     CalculateRoastStats(snapshot),
		Diagnosis: Diagnose(address, snapshot),
	}, nil
}
