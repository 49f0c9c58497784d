// Package detect implements the MEV pattern detectors. Each detector
// covers one attack type and is registered in a list the block
// analyzer iterates; adding a new attack type means registering a new
// implementation, not editing a switch.
package detect

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/patterns"
	"github.com/vietddude/mevwatch/internal/engine/signals"
)

// Input carries everything a detector needs for one analysis pass.
// Txs are already filtered to the monitored contract and in block
// inclusion order. Detectors never mutate the input.
type Input struct {
	Txs        []*domain.Transaction
	Block      *domain.Block
	ContractID string
	ChainID    domain.ChainID
}

// Detector inspects a filtered transaction set for one attack type.
type Detector interface {
	// Type returns the attack type this detector covers.
	Type() domain.AttackType

	// Detect returns zero or more candidate alerts. A returned error
	// means this detector contributes nothing for the invocation; it
	// never suppresses the other detectors.
	Detect(in Input) ([]*domain.Alert, error)
}

// matchesPattern is the cheap rejection shared by all pattern
// detectors: transaction count within the pattern's bounds and average
// gas price (gwei) at or above the pattern's minimum.
func matchesPattern(txs []*domain.Transaction, p patterns.Pattern) bool {
	if len(txs) < p.MinTxCount || len(txs) > p.MaxTxCount {
		return false
	}
	gas := signals.AnalyzeGas(txs)
	return gas.Avg >= p.MinGasPriceGwei
}

// newAlert builds an alert skeleton for a triggering transaction. The
// detection timestamp is copied from the block, never wall-clock.
func newAlert(in Input, t domain.AttackType, tx *domain.Transaction) *domain.Alert {
	return &domain.Alert{
		ID:           uuid.NewString(),
		ContractID:   in.ContractID,
		ChainID:      in.ChainID,
		AttackType:   t,
		TxHash:       tx.TxHash,
		BlockNumber:  in.Block.Number,
		GasPriceGwei: formatGwei(signals.GasPriceGwei(tx)),
		DetectedAt:   in.Block.Timestamp,
		Metadata:     map[string]string{},
	}
}

func formatGwei(g float64) string {
	return strconv.FormatFloat(g, 'f', -1, 64)
}

func formatNative(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
