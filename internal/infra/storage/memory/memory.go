// Package memory provides an in-memory alert store for tests and
// storage-less runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vietddude/mevwatch/internal/core/domain"
)

type AlertRepo struct {
	mu     sync.RWMutex
	alerts []*domain.Alert
	seen   map[string]struct{}
}

func NewAlertRepo() *AlertRepo {
	return &AlertRepo{seen: make(map[string]struct{})}
}

func identity(a *domain.Alert) string {
	return strings.ToLower(a.ContractID) + "|" + string(a.AttackType) + "|" + strings.ToLower(a.TxHash)
}

func (r *AlertRepo) Save(ctx context.Context, alert *domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(alert)
}

func (r *AlertRepo) saveLocked(alert *domain.Alert) error {
	key := identity(alert)
	if _, dup := r.seen[key]; dup {
		return nil
	}
	r.seen[key] = struct{}{}
	clone := *alert
	r.alerts = append(r.alerts, &clone)
	return nil
}

func (r *AlertRepo) SaveBatch(ctx context.Context, alerts []*domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range alerts {
		if err := r.saveLocked(a); err != nil {
			return err
		}
	}
	return nil
}

func (r *AlertRepo) ListByContract(ctx context.Context, contractID string, limit int) ([]*domain.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target := strings.ToLower(contractID)
	var out []*domain.Alert
	for _, a := range r.alerts {
		if strings.ToLower(a.ContractID) == target {
			out = append(out, a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DetectedAt > out[j].DetectedAt
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AlertRepo) CountByContract(ctx context.Context, contractID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target := strings.ToLower(contractID)
	count := 0
	for _, a := range r.alerts {
		if strings.ToLower(a.ContractID) == target {
			count++
		}
	}
	return count, nil
}
