// Package main provides the API server entry point for the wallet roaster service.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/wallet-roaster/internal/adapter"
	"github.com/wallet-roaster/internal/api"
	"github.com/wallet-roaster/internal/config"
	"github.com/wallet-roaster/internal/logging"
	"github.com/wallet-roaster/internal/service"
	"github.com/wallet-roaster/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.InitGlobalLogger(logging.ParseLogLevel(cfg.Logging.Level), logging.ParseLogFormat(cfg.Logging.Format))
	logger := logging.GetGlobalLogger()
	defer logger.Sync()

	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// RPC endpoint pool, preferred endpoint first
	endpoints := cfg.Solana.Endpoints()
	pool, err := adapter.NewEndpointPool(endpoints, adapter.SolanaProviderFactory(&http.Client{}))
	if err != nil {
		logger.WithError(err).Fatal("Failed to create RPC endpoint pool")
	}
	defer pool.Close()

	fetcherCfg := adapter.FetcherConfigFrom(cfg.Solana)
	fetcher := adapter.NewFetcher(pool, fetcherCfg)
	logger.WithFields(map[string]interface{}{
		"endpoints": len(endpoints),
		"policy":    fetcherCfg.String(),
	}).Info("Fetcher initialized")

	// Leaderboard store. An unreachable backend does not stop the server;
	// the leaderboard degrades to empty until restart.
	store, err := storage.Open(&cfg.Store, logger)
	if err != nil {
		logger.WithError(err).WithField("backend", string(cfg.Store.Backend)).
			Warn("Leaderboard store unavailable, running without persistence")
		store = storage.NewGuardedStore(storage.DisabledStore{}, "store-disabled", cfg.Store.Breaker)
	}
	defer store.Close()

	walletService := service.NewWalletService(fetcher)
	leaderboardService := service.NewLeaderboardService(store, service.LeaderboardConfigFrom(cfg.Store))

	logger.Info("Services initialized")

	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RequestsPerSec:  cfg.RateLimit.RequestsPerSecond,
		Burst:           cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, walletService, leaderboardService, store, pool, logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
