package detect

import (
	"fmt"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/patterns"
	"github.com/vietddude/mevwatch/internal/engine/signals"
)

const (
	flashLoanMinGasGwei  = 100
	flashLoanMinCalldata = 1000
	flashLoanFallbackMin = 1000 // native units, used when the pattern carries no threshold
)

// FlashLoanDetector flags individual transactions combining a large
// transferred value, a high gas price, and a large calldata payload,
// the footprint of a capital-intensive single-transaction exploit.
type FlashLoanDetector struct {
	pattern patterns.Pattern
}

func NewFlashLoanDetector(p patterns.Pattern) *FlashLoanDetector {
	return &FlashLoanDetector{pattern: p}
}

func (d *FlashLoanDetector) Type() domain.AttackType {
	return domain.AttackFlashLoan
}

func (d *FlashLoanDetector) Detect(in Input) ([]*domain.Alert, error) {
	if !matchesPattern(in.Txs, d.pattern) {
		return nil, nil
	}

	minValue := d.pattern.ValueThreshold
	if minValue <= 0 {
		minValue = flashLoanFallbackMin
	}

	var alerts []*domain.Alert
	for _, tx := range in.Txs {
		value := signals.ValueNative(tx)
		if value <= minValue {
			continue
		}
		if signals.GasPriceGwei(tx) <= flashLoanMinGasGwei {
			continue
		}
		if tx.InputSize <= flashLoanMinCalldata {
			continue
		}

		alert := newAlert(in, domain.AttackFlashLoan, tx)
		alert.RiskLevel = domain.RiskCritical
		alert.Confidence = 0.9
		alert.AttackerAddress = tx.From
		alert.EstimatedProfit = formatNative(value)
		alert.Description = fmt.Sprintf(
			"large value transfer (%s native) with high gas and %d-byte calldata",
			formatNative(value), tx.InputSize,
		)
		alert.Metadata["flash_loan_amount"] = formatNative(value)
		alert.Metadata["calldata_bytes"] = fmt.Sprintf("%d", tx.InputSize)
		alerts = append(alerts, alert)
	}

	return alerts, nil
}
