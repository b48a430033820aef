package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// fakeSolanaRPC serves canned results per method and records requests
type fakeSolanaRPC struct {
	mu       sync.Mutex
	results  map[string]string
	errors   map[string]string
	requests []rpcRequest
}

func (f *fakeSolanaRPC) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	result, hasResult := f.results[req.Method]
	rpcErr, hasErr := f.errors[req.Method]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case hasErr:
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"error":{"code":-32005,"message":"` + rpcErr + `"}}`))
	case hasResult:
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + result + `}`))
	default:
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"error":{"code":-32601,"message":"Method not found"}}`))
	}
}

func (f *fakeSolanaRPC) lastRequest(method string) (rpcRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Method == method {
			return f.requests[i], true
		}
	}
	return rpcRequest{}, false
}

func newFakeSolana(t *testing.T) (*fakeSolanaRPC, *SolanaClient) {
	t.Helper()

	fake := &fakeSolanaRPC{
		results: map[string]string{
			"getBalance": `{"context":{"slot":250000000},"value":1500000000}`,
			"getSignaturesForAddress": `[
				{"signature":"5h6x","slot":250000000,"err":null,"memo":null,"blockTime":1717243200,"confirmationStatus":"finalized"},
				{"signature":"3k9q","slot":249999000,"err":{"InstructionError":[1,{"Custom":6001}]},"memo":null,"blockTime":1717156800,"confirmationStatus":"finalized"},
				{"signature":"2aa1","slot":249998000,"err":null,"memo":null,"blockTime":null,"confirmationStatus":"finalized"}
			]`,
			"getTokenAccountsByOwner": `{"context":{"slot":250000000},"value":[
				{"pubkey":"A1","account":{"data":["","base64"],"executable":false,"lamports":2039280,"owner":"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA","rentEpoch":0}},
				{"pubkey":"A2","account":{"data":["","base64"],"executable":false,"lamports":2039280,"owner":"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA","rentEpoch":0}}
			]}`,
		},
		errors: map[string]string{},
	}

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := DialSolana(context.Background(), server.URL, server.Client())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return fake, client
}

func TestSolanaClient_GetBalance(t *testing.T) {
	fake, client := newFakeSolana(t)

	lamports, err := client.GetBalance(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), lamports)

	req, ok := fake.lastRequest("getBalance")
	require.True(t, ok)
	assert.Equal(t, "2.0", req.JSONRPC)
	require.Len(t, req.Params, 2)
	assert.JSONEq(t, `"`+testAddress+`"`, string(req.Params[0]))
	assert.JSONEq(t, `{"commitment":"confirmed"}`, string(req.Params[1]))
}

func TestSolanaClient_GetSignaturesForAddress(t *testing.T) {
	fake, client := newFakeSolana(t)

	sigs, err := client.GetSignaturesForAddress(context.Background(), testAddress, 1000)
	require.NoError(t, err)
	require.Len(t, sigs, 3)

	assert.False(t, sigs[0].Failed())
	assert.True(t, sigs[1].Failed())
	assert.False(t, sigs[2].Failed())
	require.NotNil(t, sigs[0].BlockTime)
	assert.Equal(t, int64(1717243200), *sigs[0].BlockTime)
	assert.Nil(t, sigs[2].BlockTime)

	req, ok := fake.lastRequest("getSignaturesForAddress")
	require.True(t, ok)
	assert.JSONEq(t, `{"limit":1000,"commitment":"confirmed"}`, string(req.Params[1]))
}

func TestSolanaClient_GetTokenAccountCount(t *testing.T) {
	fake, client := newFakeSolana(t)

	count, err := client.GetTokenAccountCount(context.Background(), testAddress, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	req, ok := fake.lastRequest("getTokenAccountsByOwner")
	require.True(t, ok)
	require.Len(t, req.Params, 3)
	assert.JSONEq(t, `{"programId":"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"}`, string(req.Params[1]))
	assert.JSONEq(t, `{"encoding":"base64","commitment":"confirmed"}`, string(req.Params[2]))
}

func TestSolanaClient_RPCError(t *testing.T) {
	fake, client := newFakeSolana(t)
	fake.mu.Lock()
	fake.errors["getBalance"] = "Node is behind by 120 slots"
	fake.mu.Unlock()

	_, err := client.GetBalance(context.Background(), testAddress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Node is behind")
}

func TestSolanaClient_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := DialSolana(context.Background(), server.URL, nil)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.GetBalance(context.Background(), testAddress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFetcher_AgainstJSONRPCServers(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer down.Close()

	fake, _ := newFakeSolana(t)
	up := httptest.NewServer(fake)
	defer up.Close()

	pool, err := NewEndpointPool([]string{down.URL, up.URL}, SolanaProviderFactory(nil))
	require.NoError(t, err)
	defer pool.Close()

	snapshot, err := NewFetcher(pool, testFetcherConfig()).Fetch(context.Background(), testAddress)
	require.NoError(t, err)

	assert.Equal(t, "1.5", snapshot.Balance.String())
	assert.Equal(t, 3, snapshot.TxCount)
	assert.Equal(t, 1, snapshot.FailedTxCount)
	assert.Equal(t, 2, snapshot.TokenAccountCount)
	assert.Equal(t, 4, snapshot.Attempts)

	status := pool.Status()
	assert.Equal(t, 2, status.TotalEndpoints)
	assert.True(t, status.Endpoints[0].Connected)
	assert.True(t, status.Endpoints[1].Connected)
}

func TestSolanaClient_NullResultIsAnError(t *testing.T) {
	fake, client := newFakeSolana(t)
	fake.mu.Lock()
	fake.results["getBalance"] = `null`
	fake.results["getSignaturesForAddress"] = `null`
	fake.results["getTokenAccountsByOwner"] = `{"context":{"slot":250000000},"value":null}`
	fake.mu.Unlock()

	_, err := client.GetBalance(context.Background(), testAddress)
	assert.ErrorIs(t, err, errMissingResult)

	_, err = client.GetSignaturesForAddress(context.Background(), testAddress, 1000)
	assert.ErrorIs(t, err, errMissingResult)

	_, err = client.GetTokenAccountCount(context.Background(), testAddress, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	assert.ErrorIs(t, err, errMissingResult)
}

func TestSolanaClient_NullBalanceValueIsAnError(t *testing.T) {
	fake, client := newFakeSolana(t)
	fake.mu.Lock()
	fake.results["getBalance"] = `{"context":{"slot":250000000},"value":null}`
	fake.mu.Unlock()

	_, err := client.GetBalance(context.Background(), testAddress)
	assert.ErrorIs(t, err, errMissingResult)
}

func TestSolanaClient_EmptyHistoryIsNotAnError(t *testing.T) {
	fake, client := newFakeSolana(t)
	fake.mu.Lock()
	fake.results["getSignaturesForAddress"] = `[]`
	fake.results["getTokenAccountsByOwner"] = `{"context":{"slot":250000000},"value":[]}`
	fake.mu.Unlock()

	sigs, err := client.GetSignaturesForAddress(context.Background(), testAddress, 1000)
	require.NoError(t, err)
	assert.Empty(t, sigs)

	count, err := client.GetTokenAccountCount(context.Background(), testAddress, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFetcher_NullResultsFailOverToNextEndpoint(t *testing.T) {
	broken := &fakeSolanaRPC{
		results: map[string]string{
			"getBalance":              `null`,
			"getSignaturesForAddress": `null`,
			"getTokenAccountsByOwner": `null`,
		},
		errors: map[string]string{},
	}
	first := httptest.NewServer(broken)
	defer first.Close()

	healthy, _ := newFakeSolana(t)
	second := httptest.NewServer(healthy)
	defer second.Close()

	pool, err := NewEndpointPool([]string{first.URL, second.URL}, SolanaProviderFactory(nil))
	require.NoError(t, err)
	defer pool.Close()

	cfg := testFetcherConfig()
	snapshot, err := NewFetcher(pool, cfg).Fetch(context.Background(), testAddress)
	require.NoError(t, err)

	assert.Equal(t, "1.5", snapshot.Balance.String())
	assert.Equal(t, 3, snapshot.TxCount)
	assert.Equal(t, cfg.RetryBudget+2, snapshot.Attempts)

	broken.mu.Lock()
	calls := len(broken.requests)
	broken.mu.Unlock()
	assert.Equal(t, cfg.RetryBudget+1, calls)
}
