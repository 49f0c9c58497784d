package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/vietddude/mevwatch/internal/core/domain"
)

type mockAlertRepo struct {
	alerts []*domain.Alert
	err    error
}

func (r *mockAlertRepo) Save(ctx context.Context, alert *domain.Alert) error { return nil }
func (r *mockAlertRepo) SaveBatch(ctx context.Context, alerts []*domain.Alert) error {
	return nil
}
func (r *mockAlertRepo) ListByContract(ctx context.Context, contractID string, limit int) ([]*domain.Alert, error) {
	return r.alerts, r.err
}
func (r *mockAlertRepo) CountByContract(ctx context.Context, contractID string) (int, error) {
	return len(r.alerts), nil
}

func TestStats_Rollup(t *testing.T) {
	repo := &mockAlertRepo{alerts: []*domain.Alert{
		{AttackType: domain.AttackSandwich, RiskLevel: domain.RiskHigh, DetectedAt: 1700000100},
		{AttackType: domain.AttackSandwich, RiskLevel: domain.RiskHigh, DetectedAt: 1700000200},
		{AttackType: domain.AttackArbitrage, RiskLevel: domain.RiskMedium, DetectedAt: 1700000050, EstimatedProfit: "12.5"},
	}}
	agg := NewAggregator(repo)

	out, err := agg.Stats(context.Background(), "0xContract")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if out.TotalAlerts != 3 {
		t.Errorf("Expected 3 total, got %d", out.TotalAlerts)
	}
	if out.AlertsByType[domain.AttackSandwich] != 2 {
		t.Errorf("Expected 2 sandwich, got %d", out.AlertsByType[domain.AttackSandwich])
	}
	if out.AlertsByRisk[domain.RiskMedium] != 1 {
		t.Errorf("Expected 1 medium, got %d", out.AlertsByRisk[domain.RiskMedium])
	}
	if out.LastAlertAt != 1700000200 {
		t.Errorf("Expected last alert at 1700000200, got %d", out.LastAlertAt)
	}
	if out.TotalEstimatedValue != 12.5 {
		t.Errorf("Expected estimated value 12.5, got %f", out.TotalEstimatedValue)
	}
}

func TestStats_SkipsMalformedProfit(t *testing.T) {
	repo := &mockAlertRepo{alerts: []*domain.Alert{
		{AttackType: domain.AttackFlashLoan, RiskLevel: domain.RiskCritical, EstimatedProfit: "not-a-number"},
		{AttackType: domain.AttackFlashLoan, RiskLevel: domain.RiskCritical, TxHash: "0x2", EstimatedProfit: "100"},
	}}
	agg := NewAggregator(repo)

	out, err := agg.Stats(context.Background(), "0xContract")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if out.TotalEstimatedValue != 100 {
		t.Errorf("Expected 100 ignoring malformed entry, got %f", out.TotalEstimatedValue)
	}
}

func TestStats_RepoError(t *testing.T) {
	agg := NewAggregator(&mockAlertRepo{err: errors.New("db down")})
	if _, err := agg.Stats(context.Background(), "0xContract"); err == nil {
		t.Errorf("Expected error to propagate")
	}
}

func TestStats_EmptyContract(t *testing.T) {
	agg := NewAggregator(&mockAlertRepo{})
	out, err := agg.Stats(context.Background(), "0xNothing")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if out.TotalAlerts != 0 || out.LastAlertAt != 0 {
		t.Errorf("Expected zero rollup, got %+v", out)
	}
}
