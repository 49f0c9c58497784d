// Package stats computes read-time rollups over stored alerts. Nothing
// here is persisted; every call folds the alert log again, so there is
// no materialized view to keep consistent.
package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/infra/storage"
)

// maxAlertsPerRollup bounds how many recent alerts one rollup reads.
const maxAlertsPerRollup = 1000

// Aggregator folds stored alerts into per-contract statistics.
type Aggregator struct {
	repo storage.AlertRepository
}

func NewAggregator(repo storage.AlertRepository) *Aggregator {
	return &Aggregator{repo: repo}
}

// Stats computes the rollup for one monitored contract from up to
// maxAlertsPerRollup of its most recent alerts.
func (a *Aggregator) Stats(ctx context.Context, contractID string) (*domain.AlertStats, error) {
	alerts, err := a.repo.ListByContract(ctx, contractID, maxAlertsPerRollup)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts for stats: %w", err)
	}

	out := &domain.AlertStats{
		ContractID:   contractID,
		TotalAlerts:  len(alerts),
		AlertsByType: make(map[domain.AttackType]int),
		AlertsByRisk: make(map[domain.RiskLevel]int),
	}

	for _, alert := range alerts {
		out.AlertsByType[alert.AttackType]++
		out.AlertsByRisk[alert.RiskLevel]++
		if alert.DetectedAt > out.LastAlertAt {
			out.LastAlertAt = alert.DetectedAt
		}
		if alert.EstimatedProfit == "" {
			continue
		}
		// Malformed profit estimates are skipped, not errors.
		if v, err := strconv.ParseFloat(alert.EstimatedProfit, 64); err == nil && v > 0 {
			out.TotalEstimatedValue += v
		}
	}

	return out, nil
}
