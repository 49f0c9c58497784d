package detect

import (
	"fmt"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/patterns"
	"github.com/vietddude/mevwatch/internal/engine/signals"
)

const (
	oracleMinGasGwei = 80
	oracleMinHighGas = 3
)

// OracleDetector flags clusters of high-gas transactions against one
// contract, a shape consistent with racing to move a price feed.
type OracleDetector struct {
	pattern patterns.Pattern
}

func NewOracleDetector(p patterns.Pattern) *OracleDetector {
	return &OracleDetector{pattern: p}
}

func (d *OracleDetector) Type() domain.AttackType {
	return domain.AttackOracle
}

func (d *OracleDetector) Detect(in Input) ([]*domain.Alert, error) {
	if !matchesPattern(in.Txs, d.pattern) {
		return nil, nil
	}

	var first *domain.Transaction
	count := 0
	for _, tx := range in.Txs {
		if signals.GasPriceGwei(tx) <= oracleMinGasGwei {
			continue
		}
		if first == nil {
			first = tx
		}
		count++
	}
	if count < oracleMinHighGas {
		return nil, nil
	}

	alert := newAlert(in, domain.AttackOracle, first)
	alert.RiskLevel = domain.RiskHigh
	alert.Confidence = 0.75
	alert.AttackerAddress = first.From
	alert.Description = fmt.Sprintf(
		"%d transactions above %d gwei targeting one contract in a single block",
		count, oracleMinGasGwei,
	)
	alert.Metadata["high_gas_tx_count"] = fmt.Sprintf("%d", count)

	return []*domain.Alert{alert}, nil
}
