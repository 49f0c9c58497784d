package detect

import (
	"fmt"
	"strings"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/patterns"
)

// arbitrageNonceSpread is the maximum nonce spread across a single
// sender's transactions to count as closely-sequenced execution.
const arbitrageNonceSpread = 5

// ArbitrageDetector groups transactions by sender and flags senders
// issuing two or more closely-sequenced transactions in one block,
// a common shape for intra-block arbitrage loops.
type ArbitrageDetector struct {
	pattern patterns.Pattern
}

func NewArbitrageDetector(p patterns.Pattern) *ArbitrageDetector {
	return &ArbitrageDetector{pattern: p}
}

func (d *ArbitrageDetector) Type() domain.AttackType {
	return domain.AttackArbitrage
}

func (d *ArbitrageDetector) Detect(in Input) ([]*domain.Alert, error) {
	if !matchesPattern(in.Txs, d.pattern) {
		return nil, nil
	}

	bySender := make(map[string][]*domain.Transaction)
	var order []string
	for _, tx := range in.Txs {
		sender := strings.ToLower(tx.From)
		if _, seen := bySender[sender]; !seen {
			order = append(order, sender)
		}
		bySender[sender] = append(bySender[sender], tx)
	}

	// One alert per qualifying sender, iterated in first-seen order so
	// results are deterministic.
	var alerts []*domain.Alert
	for _, sender := range order {
		txs := bySender[sender]
		if len(txs) < 2 {
			continue
		}

		minNonce, maxNonce := txs[0].Nonce, txs[0].Nonce
		for _, tx := range txs[1:] {
			if tx.Nonce < minNonce {
				minNonce = tx.Nonce
			}
			if tx.Nonce > maxNonce {
				maxNonce = tx.Nonce
			}
		}
		if maxNonce-minNonce > arbitrageNonceSpread {
			continue
		}

		alert := newAlert(in, domain.AttackArbitrage, txs[0])
		alert.RiskLevel = domain.RiskMedium
		alert.Confidence = 0.7
		alert.AttackerAddress = txs[0].From
		alert.Description = fmt.Sprintf(
			"sender issued %d closely-sequenced transactions in one block",
			len(txs),
		)
		alert.Metadata["tx_count"] = fmt.Sprintf("%d", len(txs))
		alert.Metadata["nonce_spread"] = fmt.Sprintf("%d", maxNonce-minNonce)
		alerts = append(alerts, alert)
	}

	return alerts, nil
}
