package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// ProviderFactory builds the provider for one endpoint URL
type ProviderFactory func(ctx context.Context, endpoint string) (AccountDataProvider, error)

// SolanaProviderFactory dials SolanaClients sharing one HTTP client
func SolanaProviderFactory(httpClient *http.Client) ProviderFactory {
	return func(ctx context.Context, endpoint string) (AccountDataProvider, error) {
		return DialSolana(ctx, endpoint, httpClient)
	}
}

// EndpointPool is the ordered list of RPC endpoints a fetch walks through.
// Order is fixed at construction. Providers are created on first use and
// kept until Close.
type EndpointPool struct {
	endpoints []string
	factory   ProviderFactory

	mu        sync.Mutex
	providers []AccountDataProvider
}

// NewEndpointPool creates a pool over endpoints, in the given order
func NewEndpointPool(endpoints []string, factory ProviderFactory) (*EndpointPool, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("at least one RPC endpoint is required")
	}
	if factory == nil {
		return nil, fmt.Errorf("provider factory is required")
	}

	return &EndpointPool{
		endpoints: append([]string(nil), endpoints...),
		factory:   factory,
		providers: make([]AccountDataProvider, len(endpoints)),
	}, nil
}

// Len returns the number of endpoints in the pool
func (p *EndpointPool) Len() int {
	return len(p.endpoints)
}

// Endpoint returns the URL at index
func (p *EndpointPool) Endpoint(index int) string {
	return p.endpoints[index]
}

// Provider returns the provider for index, creating it on first use
func (p *EndpointPool) Provider(ctx context.Context, index int) (AccountDataProvider, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if provider := p.providers[index]; provider != nil {
		return provider, nil
	}

	provider, err := p.factory(ctx, p.endpoints[index])
	if err != nil {
		return nil, err
	}
	p.providers[index] = provider
	return provider, nil
}

// Close releases every provider created so far
func (p *EndpointPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, provider := range p.providers {
		if closer, ok := provider.(interface{ Close() }); ok {
			closer.Close()
		}
		p.providers[i] = nil
	}
}

// Status returns the current status of the pool
func (p *EndpointPool) Status() *PoolStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := &PoolStatus{
		TotalEndpoints: len(p.endpoints),
		Endpoints:      make([]EndpointStatus, len(p.endpoints)),
	}
	for i, endpoint := range p.endpoints {
		status.Endpoints[i] = EndpointStatus{
			Index:     i,
			URL:       RedactEndpoint(endpoint),
			Connected: p.providers[i] != nil,
		}
	}
	return status
}

// PoolStatus represents the current status of the endpoint pool
type PoolStatus struct {
	TotalEndpoints int              `json:"totalEndpoints"`
	Endpoints      []EndpointStatus `json:"endpoints"`
}

// EndpointStatus represents the status of a single endpoint
type EndpointStatus struct {
	Index     int    `json:"index"`
	URL       string `json:"url"`
	Connected bool   `json:"connected"`
}

// RedactEndpoint reduces an endpoint to scheme and host. Providers put API
// keys in the userinfo, path or query.
func RedactEndpoint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "invalid-endpoint"
	}
	return u.Scheme + "://" + u.Host
}
