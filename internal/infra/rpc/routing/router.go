// Package routing handles provider selection, failover, and retry
// logic for JSON-RPC calls.
package routing

import (
	"fmt"
	"sync"
	"time"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/infra/rpc/provider"
)

// circuitOpenThreshold is the consecutive-failure count after which a
// provider is skipped until it cools down.
const (
	circuitOpenThreshold = 5
	circuitCooldown      = 2 * time.Minute
)

// Router handles provider selection and health tracking.
type Router interface {
	// AddProvider registers a provider for a specific chain
	AddProvider(chainID domain.ChainID, p provider.Provider)

	// GetProvider returns the best available provider for a chain
	GetProvider(chainID domain.ChainID) (provider.Provider, error)

	// GetAllProviders returns all providers for a chain, preferred
	// first
	GetAllProviders(chainID domain.ChainID) []provider.Provider

	// RecordSuccess tracks successful calls
	RecordSuccess(providerName string, latency time.Duration)

	// RecordFailure tracks failed calls
	RecordFailure(providerName string, err error)
}

type providerMetrics struct {
	successCount     int
	failureCount     int
	totalLatency     time.Duration
	lastFailureAt    time.Time
	consecutiveFails int
}

// DefaultRouter implements provider selection with a circuit breaker:
// a provider failing repeatedly is parked behind the healthy ones
// until its cooldown expires.
type DefaultRouter struct {
	mu             sync.RWMutex
	chainProviders map[domain.ChainID][]provider.Provider
	providerHealth map[string]*providerMetrics
}

// NewRouter creates a new router.
func NewRouter() *DefaultRouter {
	return &DefaultRouter{
		chainProviders: make(map[domain.ChainID][]provider.Provider),
		providerHealth: make(map[string]*providerMetrics),
	}
}

// AddProvider registers a provider for a chain.
func (r *DefaultRouter) AddProvider(chainID domain.ChainID, p provider.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.chainProviders[chainID] = append(r.chainProviders[chainID], p)
	r.providerHealth[p.GetName()] = &providerMetrics{}
}

// GetProvider returns the best available provider for a chain.
func (r *DefaultRouter) GetProvider(chainID domain.ChainID) (provider.Provider, error) {
	providers := r.GetAllProviders(chainID)
	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers for chain %s", chainID)
	}
	return providers[0], nil
}

// GetAllProviders returns providers for a chain with open-circuit ones
// moved to the back, so failover still reaches them as a last resort.
func (r *DefaultRouter) GetAllProviders(chainID domain.ChainID) []provider.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := r.chainProviders[chainID]
	healthy := make([]provider.Provider, 0, len(providers))
	var parked []provider.Provider
	for _, p := range providers {
		if r.circuitOpenLocked(p.GetName()) {
			parked = append(parked, p)
			continue
		}
		healthy = append(healthy, p)
	}
	return append(healthy, parked...)
}

func (r *DefaultRouter) circuitOpenLocked(name string) bool {
	m, ok := r.providerHealth[name]
	if !ok {
		return false
	}
	return m.consecutiveFails >= circuitOpenThreshold &&
		time.Since(m.lastFailureAt) < circuitCooldown
}

// RecordSuccess tracks a successful call.
func (r *DefaultRouter) RecordSuccess(providerName string, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.providerHealth[providerName]
	if !ok {
		return
	}
	m.successCount++
	m.totalLatency += latency
	m.consecutiveFails = 0
}

// RecordFailure tracks a failed call.
func (r *DefaultRouter) RecordFailure(providerName string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.providerHealth[providerName]
	if !ok {
		return
	}
	m.failureCount++
	m.consecutiveFails++
	m.lastFailureAt = time.Now()
}
