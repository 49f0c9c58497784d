package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vietddude/mevwatch/internal/core/domain"
)

// AlertRepo implements storage.AlertRepository using PostgreSQL.
type AlertRepo struct {
	db *DB
}

// NewAlertRepo creates a new PostgreSQL alert repository.
func NewAlertRepo(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

const insertAlert = `
	INSERT INTO mev_alerts (
		id, contract_id, chain_id, attack_type, risk_level, confidence,
		description, tx_hash, block_number, gas_price_gwei,
		estimated_profit, victim_address, attacker_address, detected_at,
		metadata, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
	ON CONFLICT (contract_id, attack_type, tx_hash) DO NOTHING
`

// Save persists an alert. The unique index on
// (contract_id, attack_type, tx_hash) makes retried writes no-ops,
// backing the engine's in-memory deduplication.
func (r *AlertRepo) Save(ctx context.Context, alert *domain.Alert) error {
	metadata, err := json.Marshal(alert.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal alert metadata: %w", err)
	}

	_, err = r.db.ExecContext(ctx, insertAlert,
		alert.ID, alert.ContractID, string(alert.ChainID),
		string(alert.AttackType), string(alert.RiskLevel), alert.Confidence,
		alert.Description, alert.TxHash, alert.BlockNumber, alert.GasPriceGwei,
		nullable(alert.EstimatedProfit), nullable(alert.VictimAddress),
		nullable(alert.AttackerAddress), alert.DetectedAt, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

// SaveBatch persists multiple alerts in one transaction.
func (r *AlertRepo) SaveBatch(ctx context.Context, alerts []*domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertAlert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, alert := range alerts {
		metadata, err := json.Marshal(alert.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal alert metadata: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			alert.ID, alert.ContractID, string(alert.ChainID),
			string(alert.AttackType), string(alert.RiskLevel), alert.Confidence,
			alert.Description, alert.TxHash, alert.BlockNumber, alert.GasPriceGwei,
			nullable(alert.EstimatedProfit), nullable(alert.VictimAddress),
			nullable(alert.AttackerAddress), alert.DetectedAt, metadata,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

type alertRow struct {
	ID              string    `db:"id"`
	ContractID      string    `db:"contract_id"`
	ChainID         string    `db:"chain_id"`
	AttackType      string    `db:"attack_type"`
	RiskLevel       string    `db:"risk_level"`
	Confidence      float64   `db:"confidence"`
	Description     string    `db:"description"`
	TxHash          string    `db:"tx_hash"`
	BlockNumber     uint64    `db:"block_number"`
	GasPriceGwei    string    `db:"gas_price_gwei"`
	EstimatedProfit *string   `db:"estimated_profit"`
	VictimAddress   *string   `db:"victim_address"`
	AttackerAddress *string   `db:"attacker_address"`
	DetectedAt      uint64    `db:"detected_at"`
	Metadata        []byte    `db:"metadata"`
	CreatedAt       time.Time `db:"created_at"`
}

// ListByContract returns up to limit alerts for a contract, newest
// first by block timestamp.
func (r *AlertRepo) ListByContract(ctx context.Context, contractID string, limit int) ([]*domain.Alert, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, contract_id, chain_id, attack_type, risk_level, confidence,
		       description, tx_hash, block_number, gas_price_gwei,
		       estimated_profit, victim_address, attacker_address, detected_at,
		       metadata, created_at
		FROM mev_alerts
		WHERE LOWER(contract_id) = LOWER($1)
		ORDER BY detected_at DESC, created_at DESC
		LIMIT $2
	`

	var rows []alertRow
	if err := r.db.SelectContext(ctx, &rows, query, contractID, limit); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	alerts := make([]*domain.Alert, 0, len(rows))
	for i := range rows {
		alerts = append(alerts, rows[i].toDomain())
	}
	return alerts, nil
}

// CountByContract returns the number of stored alerts for a contract.
func (r *AlertRepo) CountByContract(ctx context.Context, contractID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM mev_alerts WHERE LOWER(contract_id) = LOWER($1)`
	if err := r.db.GetContext(ctx, &count, query, contractID); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

func (row *alertRow) toDomain() *domain.Alert {
	alert := &domain.Alert{
		ID:           row.ID,
		ContractID:   row.ContractID,
		ChainID:      domain.ChainID(row.ChainID),
		AttackType:   domain.AttackType(row.AttackType),
		RiskLevel:    domain.RiskLevel(row.RiskLevel),
		Confidence:   row.Confidence,
		Description:  row.Description,
		TxHash:       row.TxHash,
		BlockNumber:  row.BlockNumber,
		GasPriceGwei: row.GasPriceGwei,
		DetectedAt:   row.DetectedAt,
	}
	if row.EstimatedProfit != nil {
		alert.EstimatedProfit = *row.EstimatedProfit
	}
	if row.VictimAddress != nil {
		alert.VictimAddress = *row.VictimAddress
	}
	if row.AttackerAddress != nil {
		alert.AttackerAddress = *row.AttackerAddress
	}
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &alert.Metadata)
	}
	return alert
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
