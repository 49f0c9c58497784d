// Package patterns holds the static catalog of MEV signatures the
// detectors match against. Loaded once at startup, read-only after.
package patterns

import (
	"github.com/vietddude/mevwatch/internal/core/domain"
)

// Pattern describes the indicator thresholds for one attack type.
// Gas prices are gwei, value thresholds native-currency units.
type Pattern struct {
	Type            domain.AttackType
	MinGasPriceGwei float64
	MaxGasPriceGwei float64
	TimeWindowSec   int
	MinTxCount      int
	MaxTxCount      int
	ValueThreshold  float64  // 0 = unset
	Selectors       []string // contract interaction selectors, optional
	BaseRisk        float64  // in [0,1]
}

// table is the canonical pattern list. Thresholds are tuned to keep
// false positives low at typical mainnet gas-price variance.
var table = []Pattern{
	{
		Type:            domain.AttackFrontrunning,
		MinGasPriceGwei: 20,
		MaxGasPriceGwei: 5000,
		TimeWindowSec:   12,
		MinTxCount:      2,
		MaxTxCount:      50,
		BaseRisk:        0.7,
	},
	{
		Type:            domain.AttackSandwich,
		MinGasPriceGwei: 20,
		MaxGasPriceGwei: 5000,
		TimeWindowSec:   12,
		MinTxCount:      3,
		MaxTxCount:      50,
		BaseRisk:        0.8,
	},
	{
		Type:            domain.AttackArbitrage,
		MinGasPriceGwei: 10,
		MaxGasPriceGwei: 5000,
		TimeWindowSec:   12,
		MinTxCount:      2,
		MaxTxCount:      50,
		BaseRisk:        0.5,
	},
	{
		Type:            domain.AttackFlashLoan,
		MinGasPriceGwei: 50,
		MaxGasPriceGwei: 10000,
		TimeWindowSec:   12,
		MinTxCount:      1,
		MaxTxCount:      20,
		ValueThreshold:  1000,
		BaseRisk:        0.9,
	},
	{
		Type:            domain.AttackOracle,
		MinGasPriceGwei: 30,
		MaxGasPriceGwei: 5000,
		TimeWindowSec:   60,
		MinTxCount:      3,
		MaxTxCount:      50,
		BaseRisk:        0.75,
	},
}

// Library exposes read-only access to the pattern catalog.
type Library struct {
	byType map[domain.AttackType]Pattern
	all    []Pattern
}

// NewLibrary builds the library from the static table.
func NewLibrary() *Library {
	byType := make(map[domain.AttackType]Pattern, len(table))
	for _, p := range table {
		byType[p.Type] = p
	}
	return &Library{byType: byType, all: table}
}

// For returns the pattern for an attack type.
func (l *Library) For(t domain.AttackType) (Pattern, bool) {
	p, ok := l.byType[t]
	return p, ok
}

// All returns every catalog entry.
func (l *Library) All() []Pattern {
	out := make([]Pattern, len(l.all))
	copy(out, l.all)
	return out
}
