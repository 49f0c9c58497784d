package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/infra/rpc/provider"
)

type mockProvider struct {
	name    string
	results []any
	errs    []error
	calls   int
}

func (p *mockProvider) GetName() string { return p.name }

func (p *mockProvider) Call(ctx context.Context, method string, params []any) (any, error) {
	i := p.calls
	p.calls++
	if i >= len(p.errs) {
		i = len(p.errs) - 1
	}
	if p.errs[i] != nil {
		return nil, p.errs[i]
	}
	return p.results[i], nil
}

func (p *mockProvider) GetHealth() provider.HealthStatus {
	return provider.HealthStatus{Available: true}
}

var fastRetry = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    time.Millisecond,
	MaxDelay:        5 * time.Millisecond,
	BackoffMultiple: 2.0,
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err      error
		expected ErrorAction
	}{
		{errors.New("status 429: Too Many Requests"), ActionFailover},
		{errors.New("daily quota exceeded"), ActionFailover},
		{errors.New("rpc error -32601: method not found"), ActionFatal},
		{errors.New("rpc error -32602: invalid params"), ActionFatal},
		{errors.New("connection reset by peer"), ActionRetry},
		{errors.New("status 503"), ActionRetry},
	}
	for _, tc := range cases {
		if got := ClassifyError(tc.err); got != tc.expected {
			t.Errorf("ClassifyError(%v) = %d, expected %d", tc.err, got, tc.expected)
		}
	}
}

func TestCallWithRetry_RecoversTransientError(t *testing.T) {
	p := &mockProvider{
		name:    "flaky",
		errs:    []error{errors.New("connection reset"), nil},
		results: []any{nil, "0x10"},
	}

	result, err := CallWithRetry(context.Background(), p, "eth_blockNumber", nil, fastRetry)
	if err != nil {
		t.Fatalf("CallWithRetry failed: %v", err)
	}
	if result != "0x10" {
		t.Errorf("Expected 0x10, got %v", result)
	}
	if p.calls != 2 {
		t.Errorf("Expected 2 calls, got %d", p.calls)
	}
}

func TestCallWithRetry_FailoverErrorReturnsImmediately(t *testing.T) {
	p := &mockProvider{
		name: "limited",
		errs: []error{errors.New("429 too many requests")},
	}

	if _, err := CallWithRetry(context.Background(), p, "eth_blockNumber", nil, fastRetry); err == nil {
		t.Fatalf("Expected error")
	}
	if p.calls != 1 {
		t.Errorf("Throttle error should not be retried on the same provider, got %d calls", p.calls)
	}
}

func TestCallWithRetryAndFailover_UsesNextProvider(t *testing.T) {
	router := NewRouter()
	throttled := &mockProvider{name: "primary", errs: []error{errors.New("429 too many requests")}}
	healthy := &mockProvider{name: "secondary", errs: []error{nil}, results: []any{"0x20"}}
	router.AddProvider(domain.ChainIDEthereum, throttled)
	router.AddProvider(domain.ChainIDEthereum, healthy)

	result, err := CallWithRetryAndFailover(context.Background(), router, domain.ChainIDEthereum, "eth_blockNumber", nil, fastRetry)
	if err != nil {
		t.Fatalf("CallWithRetryAndFailover failed: %v", err)
	}
	if result != "0x20" {
		t.Errorf("Expected result from secondary, got %v", result)
	}
}

func TestCallWithRetryAndFailover_FatalStopsFailover(t *testing.T) {
	router := NewRouter()
	fatal := &mockProvider{name: "primary", errs: []error{errors.New("rpc error -32601: method not found")}}
	backup := &mockProvider{name: "secondary", errs: []error{nil}, results: []any{"0x20"}}
	router.AddProvider(domain.ChainIDEthereum, fatal)
	router.AddProvider(domain.ChainIDEthereum, backup)

	if _, err := CallWithRetryAndFailover(context.Background(), router, domain.ChainIDEthereum, "eth_blockNumber", nil, fastRetry); err == nil {
		t.Fatalf("Expected fatal error")
	}
	if backup.calls != 0 {
		t.Errorf("Fatal error must not fail over, secondary got %d calls", backup.calls)
	}
}

func TestCallWithRetryAndFailover_NoProviders(t *testing.T) {
	router := NewRouter()
	if _, err := CallWithRetryAndFailover(context.Background(), router, domain.ChainIDEthereum, "eth_blockNumber", nil, fastRetry); err == nil {
		t.Errorf("Expected error with no providers")
	}
}

func TestRouter_CircuitBreakerParksProvider(t *testing.T) {
	router := NewRouter()
	flaky := &mockProvider{name: "flaky"}
	stable := &mockProvider{name: "stable"}
	router.AddProvider(domain.ChainIDEthereum, flaky)
	router.AddProvider(domain.ChainIDEthereum, stable)

	for i := 0; i < circuitOpenThreshold; i++ {
		router.RecordFailure("flaky", errors.New("timeout"))
	}

	providers := router.GetAllProviders(domain.ChainIDEthereum)
	if len(providers) != 2 {
		t.Fatalf("Expected both providers, got %d", len(providers))
	}
	if providers[0].GetName() != "stable" {
		t.Errorf("Expected open-circuit provider parked at the back, got %s first", providers[0].GetName())
	}

	// Success resets the breaker and restores registration order
	router.RecordSuccess("flaky", time.Millisecond)
	providers = router.GetAllProviders(domain.ChainIDEthereum)
	if providers[0].GetName() != "flaky" {
		t.Errorf("Expected breaker reset after success, got %s first", providers[0].GetName())
	}
}
