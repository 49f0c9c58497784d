// Package provider implements JSON-RPC endpoint access.
//
// This package contains:
//   - Provider interface: core abstraction for RPC endpoints
//   - HTTPProvider: JSON-RPC over HTTP implementation
//   - Monitor: health and rate tracking per endpoint
package provider

import (
	"context"
	"time"
)

// Provider defines the core interface for an RPC endpoint.
type Provider interface {
	// GetName returns the provider identifier (e.g., "alchemy", "infura")
	GetName() string

	// Call makes a single JSON-RPC call.
	Call(ctx context.Context, method string, params []any) (any, error)

	// GetHealth returns current health metrics.
	GetHealth() HealthStatus
}

// HealthStatus holds per-provider health metrics.
type HealthStatus struct {
	Available      bool
	LastSuccessAt  time.Time
	LastFailureAt  time.Time
	AverageLatency time.Duration
	SuccessCount   int
	FailureCount   int
}
