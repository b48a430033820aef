// Package main provides a CLI that fetches one wallet through the configured
// RPC pool and prints the snapshot with its roast stats.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/wallet-roaster/internal/adapter"
	"github.com/wallet-roaster/internal/config"
	"github.com/wallet-roaster/internal/logging"
	"github.com/wallet-roaster/internal/service"
)

func main() {
	address := flag.String("address", "", "Wallet address to fetch (required)")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall deadline")
	verbose := flag.Bool("v", false, "Log each attempt")
	flag.Parse()

	if *address == "" {
		fmt.Fprintln(os.Stderr, "Usage: walletcheck -address <wallet>")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	level := logging.LevelWarn
	if *verbose {
		level = logging.LevelDebug
	}
	logger := logging.NewLoggerWithWriter(os.Stderr, level, logging.FormatText)
	defer logger.Sync()

	pool, err := adapter.NewEndpointPool(cfg.Solana.Endpoints(), adapter.SolanaProviderFactory(&http.Client{}))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating endpoint pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(logging.WithLogger(context.Background(), logger), *timeout)
	defer cancel()

	wallets := service.NewWalletService(adapter.NewFetcher(pool, adapter.FetcherConfigFrom(cfg.Solana)))

	start := time.Now()
	roast, err := wallets.Roast(ctx, *address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fetch failed after %s: %v\n", time.Since(start).Round(time.Millisecond), err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Fetched via %s in %s (%d attempts)\n",
		roast.Wallet.Endpoint, time.Since(start).Round(time.Millisecond), roast.Wallet.Attempts)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(roast); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
		os.Exit(1)
	}
}
