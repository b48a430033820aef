package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// DefaultCommitment is the commitment level used for every query
const DefaultCommitment = "confirmed"

// AccountDataProvider is the subset of Solana JSON-RPC one endpoint must serve
type AccountDataProvider interface {
	// GetBalance returns the account balance in lamports
	GetBalance(ctx context.Context, address string) (uint64, error)

	// GetSignaturesForAddress returns up to limit most recent signatures, newest first
	GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error)

	// GetTokenAccountCount returns how many token accounts owner holds under programID
	GetTokenAccountCount(ctx context.Context, owner, programID string) (int, error)
}

// SignatureInfo is one entry of getSignaturesForAddress
type SignatureInfo struct {
	Signature string          `json:"signature"`
	Slot      uint64          `json:"slot"`
	Err       json.RawMessage `json:"err"`
	BlockTime *int64          `json:"blockTime"`
}

// Failed reports whether the transaction carried an error
func (s SignatureInfo) Failed() bool {
	return len(s.Err) > 0 && string(s.Err) != "null"
}

// errMissingResult marks a response whose result or value was null or absent.
// Such a response is malformed and fails the attempt.
var errMissingResult = errors.New("missing result in RPC response")

type balanceResult struct {
	Value *uint64 `json:"value"`
}

type tokenAccountsResult struct {
	Value *[]json.RawMessage `json:"value"`
}

// SolanaClient speaks Solana JSON-RPC to a single endpoint. The transport is
// go-ethereum's generic JSON-RPC 2.0 client; nothing Ethereum-specific is used.
type SolanaClient struct {
	endpoint   string
	commitment string
	client     *rpc.Client
}

// DialSolana creates a client for endpoint. HTTP endpoints do not connect
// until the first call.
func DialSolana(ctx context.Context, endpoint string, httpClient *http.Client) (*SolanaClient, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	client, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", RedactEndpoint(endpoint), err)
	}

	return &SolanaClient{
		endpoint:   endpoint,
		commitment: DefaultCommitment,
		client:     client,
	}, nil
}

// GetBalance returns the account balance in lamports
func (c *SolanaClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	var res *balanceResult
	err := c.client.CallContext(ctx, &res, "getBalance", address, map[string]interface{}{
		"commitment": c.commitment,
	})
	if err != nil {
		return 0, fmt.Errorf("getBalance: %w", err)
	}
	if res == nil || res.Value == nil {
		return 0, fmt.Errorf("getBalance: %w", errMissingResult)
	}
	return *res.Value, nil
}

// GetSignaturesForAddress returns up to limit most recent signatures, newest first
func (c *SolanaClient) GetSignaturesForAddress(ctx context.Context, address string, limit int) ([]SignatureInfo, error) {
	var res []SignatureInfo
	err := c.client.CallContext(ctx, &res, "getSignaturesForAddress", address, map[string]interface{}{
		"limit":      limit,
		"commitment": c.commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("getSignaturesForAddress: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("getSignaturesForAddress: %w", errMissingResult)
	}
	return res, nil
}

// GetTokenAccountCount returns how many token accounts owner holds under programID
func (c *SolanaClient) GetTokenAccountCount(ctx context.Context, owner, programID string) (int, error) {
	var res *tokenAccountsResult
	err := c.client.CallContext(ctx, &res, "getTokenAccountsByOwner", owner,
		map[string]interface{}{"programId": programID},
		map[string]interface{}{"encoding": "base64", "commitment": c.commitment},
	)
	if err != nil {
		return 0, fmt.Errorf("getTokenAccountsByOwner: %w", err)
	}
	if res == nil || res.Value == nil {
		return 0, fmt.Errorf("getTokenAccountsByOwner: %w", errMissingResult)
	}
	return len(*res.Value), nil
}

// Close releases the underlying client
func (c *SolanaClient) Close() {
	c.client.Close()
}
