package detect

import (
	"fmt"
	"math"
	"sort"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/patterns"
	"github.com/vietddude/mevwatch/internal/engine/risk"
	"github.com/vietddude/mevwatch/internal/engine/signals"
)

// frontrunGasRatio is the adjacent-pair gas-price ratio above which a
// higher-gas transaction is flagged as front-running the lower one.
const frontrunGasRatio = 1.5

// FrontrunDetector flags pairs of transactions where one outbids
// another on gas price by more than frontrunGasRatio. Sorting is done
// on a copy; the input order is untouched.
type FrontrunDetector struct {
	pattern patterns.Pattern
}

func NewFrontrunDetector(p patterns.Pattern) *FrontrunDetector {
	return &FrontrunDetector{pattern: p}
}

func (d *FrontrunDetector) Type() domain.AttackType {
	return domain.AttackFrontrunning
}

func (d *FrontrunDetector) Detect(in Input) ([]*domain.Alert, error) {
	if !matchesPattern(in.Txs, d.pattern) {
		return nil, nil
	}

	sorted := make([]*domain.Transaction, len(in.Txs))
	copy(sorted, in.Txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return signals.GasPriceGwei(sorted[i]) > signals.GasPriceGwei(sorted[j])
	})

	// Every qualifying adjacent pair yields an alert, not just the
	// first match.
	var alerts []*domain.Alert
	for i := 0; i+1 < len(sorted); i++ {
		higher, lower := sorted[i], sorted[i+1]
		lowerGas := signals.GasPriceGwei(lower)
		if lowerGas <= 0 {
			continue
		}
		ratio := signals.GasPriceGwei(higher) / lowerGas
		if ratio <= frontrunGasRatio {
			continue
		}

		alert := newAlert(in, domain.AttackFrontrunning, higher)
		alert.RiskLevel = risk.Level(ratio-1, d.pattern.BaseRisk)
		alert.Confidence = frontrunConfidence(ratio)
		alert.AttackerAddress = higher.From
		alert.VictimAddress = lower.From
		alert.Description = fmt.Sprintf(
			"gas price outbid by %.2fx (%s gwei vs %s gwei)",
			ratio, alert.GasPriceGwei, formatGwei(lowerGas),
		)
		alert.Metadata["frontrun_tx"] = higher.TxHash
		alert.Metadata["victim_tx"] = lower.TxHash
		alert.Metadata["gas_ratio"] = fmt.Sprintf("%.4f", ratio)
		alerts = append(alerts, alert)
	}

	return alerts, nil
}

func frontrunConfidence(ratio float64) float64 {
	return math.Min(0.5+(ratio-frontrunGasRatio)/5, 0.95)
}
