package storage

import (
	"context"
	"errors"

	"github.com/vietddude/mevwatch/internal/core/domain"
)

var (
	// ErrDuplicateAlert is returned when an alert with the same
	// (contract, attack type, tx hash) identity is already stored.
	ErrDuplicateAlert = errors.New("alert already stored")
)

// AlertRepository persists MEV alerts. The steady-state flow is
// append-only: alerts are saved once and never updated or deleted, so
// concurrent writers from different blocks never contend on the same
// alert identity.
type AlertRepository interface {
	// Save persists an alert. Saving an alert whose
	// (contract, attack type, tx hash) identity already exists is a
	// no-op; the stored unique index backs the in-memory
	// deduplication against retried writes.
	Save(ctx context.Context, alert *domain.Alert) error

	// SaveBatch persists multiple alerts.
	SaveBatch(ctx context.Context, alerts []*domain.Alert) error

	// ListByContract returns up to limit alerts for a contract,
	// newest first.
	ListByContract(ctx context.Context, contractID string, limit int) ([]*domain.Alert, error)

	// CountByContract returns the number of stored alerts for a
	// contract.
	CountByContract(ctx context.Context, contractID string) (int, error)
}
