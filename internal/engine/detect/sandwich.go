package detect

import (
	"fmt"
	"strings"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/patterns"
	"github.com/vietddude/mevwatch/internal/engine/signals"
)

// sandwichGasRatio is the minimum bracket-to-victim gas-price ratio for
// both the front-run and back-run legs.
const sandwichGasRatio = 1.3

// SandwichDetector scans the block-ordered transaction sequence in
// sliding windows of three for a victim bracketed by two same-sender
// transactions. It must operate on inclusion order; a permuted input
// that breaks adjacency legitimately suppresses the alert.
type SandwichDetector struct {
	pattern patterns.Pattern
}

func NewSandwichDetector(p patterns.Pattern) *SandwichDetector {
	return &SandwichDetector{pattern: p}
}

func (d *SandwichDetector) Type() domain.AttackType {
	return domain.AttackSandwich
}

func (d *SandwichDetector) Detect(in Input) ([]*domain.Alert, error) {
	if !matchesPattern(in.Txs, d.pattern) {
		return nil, nil
	}

	var alerts []*domain.Alert
	for i := 0; i+2 < len(in.Txs); i++ {
		front, victim, back := in.Txs[i], in.Txs[i+1], in.Txs[i+2]
		victimGas := signals.GasPriceGwei(victim)
		if victimGas <= 0 {
			continue
		}
		if signals.GasPriceGwei(front) <= sandwichGasRatio*victimGas {
			continue
		}
		if signals.GasPriceGwei(back) <= sandwichGasRatio*victimGas {
			continue
		}
		if !strings.EqualFold(front.From, back.From) {
			continue
		}

		alert := newAlert(in, domain.AttackSandwich, front)
		alert.RiskLevel = domain.RiskHigh
		alert.Confidence = 0.85
		alert.AttackerAddress = front.From
		alert.VictimAddress = victim.From
		alert.Description = fmt.Sprintf(
			"victim tx %s bracketed by same-sender txs at >%.1fx its gas price",
			victim.TxHash, sandwichGasRatio,
		)
		alert.Metadata["frontrun_tx"] = front.TxHash
		alert.Metadata["backrun_tx"] = back.TxHash
		alert.Metadata["victim_tx"] = victim.TxHash
		alerts = append(alerts, alert)
	}

	return alerts, nil
}
