// Package signals implements the stateless signal extractors shared by
// the pattern detectors and the composite strategy detector.
package signals

import (
	"math/big"

	"github.com/vietddude/mevwatch/internal/core/domain"
)

const (
	weiPerGwei   = 1e9
	weiPerNative = 1e18
)

// GasStats summarizes gas prices (gwei) over a transaction set.
type GasStats struct {
	Avg        float64 `json:"avg_gwei"`
	Max        float64 `json:"max_gwei"`
	Min        float64 `json:"min_gwei"`
	Suspicious bool    `json:"suspicious"`
}

// TimingStats summarizes nonce spread over a transaction set. Nonce is
// a cheap proxy for temporal proximity of same-sender transactions.
type TimingStats struct {
	NonceSpread uint64 `json:"nonce_spread"`
	Rapid       bool   `json:"rapid_execution"`
}

// ValueStats summarizes transferred value (native units).
type ValueStats struct {
	Total     float64 `json:"total_value"`
	Max       float64 `json:"max_value"`
	HighValue bool    `json:"high_value"`
}

// ValueLimits are the configurable thresholds for the high-value flag.
type ValueLimits struct {
	MaxSingle float64 `yaml:"single"`
	MaxTotal  float64 `yaml:"total"`
}

// DefaultValueLimits matches typical mainnet monitoring defaults.
var DefaultValueLimits = ValueLimits{MaxSingle: 10, MaxTotal: 50}

// AnalyzeGas computes gas-price statistics. Suspicious is true when the
// maximum exceeds twice the average.
func AnalyzeGas(txs []*domain.Transaction) GasStats {
	if len(txs) == 0 {
		return GasStats{}
	}

	var stats GasStats
	var sum float64
	for i, tx := range txs {
		g := GasPriceGwei(tx)
		sum += g
		if i == 0 || g > stats.Max {
			stats.Max = g
		}
		if i == 0 || g < stats.Min {
			stats.Min = g
		}
	}
	stats.Avg = sum / float64(len(txs))
	stats.Suspicious = stats.Max > 2*stats.Avg
	return stats
}

// AnalyzeTiming computes the nonce spread. Rapid is true when the
// spread is at most 10 across at least 3 transactions.
func AnalyzeTiming(txs []*domain.Transaction) TimingStats {
	if len(txs) == 0 {
		return TimingStats{}
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

	spread := maxNonce - minNonce
	return TimingStats{
		NonceSpread: spread,
		Rapid:       spread <= 10 && len(txs) >= 3,
	}
}

// AnalyzeValue computes transferred-value statistics against the given
// limits.
func AnalyzeValue(txs []*domain.Transaction, limits ValueLimits) ValueStats {
	var stats ValueStats
	for _, tx := range txs {
		v := ValueNative(tx)
		stats.Total += v
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.HighValue = stats.Max > limits.MaxSingle || stats.Total > limits.MaxTotal
	return stats
}

// GasPriceGwei converts a transaction's wei gas price to gwei.
// Malformed values are treated as zero to keep detectors conservative.
func GasPriceGwei(tx *domain.Transaction) float64 {
	return weiToFloat(tx.GasPrice, weiPerGwei)
}

// ValueNative converts a transaction's wei value to native units.
func ValueNative(tx *domain.Transaction) float64 {
	return weiToFloat(tx.Value, weiPerNative)
}

func weiToFloat(wei string, unit float64) float64 {
	if wei == "" {
		return 0
	}
	f, ok := new(big.Float).SetString(wei)
	if !ok {
		return 0
	}
	out, _ := new(big.Float).Quo(f, big.NewFloat(unit)).Float64()
	if out < 0 {
		return 0
	}
	return out
}
