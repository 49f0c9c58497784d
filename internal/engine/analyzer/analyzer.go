// Package analyzer orchestrates one detection pass over a single
// (chain, block, monitored contract) tuple.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/detect"
	"github.com/vietddude/mevwatch/internal/engine/patterns"
	"github.com/vietddude/mevwatch/internal/engine/signals"
	"github.com/vietddude/mevwatch/internal/infra/chain"
)

// DefaultFetchTimeout bounds the chain connector call. On timeout the
// pass is treated like any connector failure: logged, empty result.
const DefaultFetchTimeout = 10 * time.Second

// FetchErrorHook is invoked when a block fetch fails, so callers that
// need failure visibility (retry queues, metrics) can observe it
// without the analyzer ever propagating an error.
type FetchErrorHook func(chainID domain.ChainID, blockNumber uint64, contractID string, err error)

// Analyzer runs the detector suite over blocks. Stateless across
// invocations; safe for concurrent use.
type Analyzer struct {
	connectors   chain.Connectors
	detectors    []detect.Detector
	fetchTimeout time.Duration
	onFetchError FetchErrorHook
	log          *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithFetchTimeout overrides the connector call timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.fetchTimeout = d
		}
	}
}

// WithFetchErrorHook registers a hook for connector failures.
func WithFetchErrorHook(h FetchErrorHook) Option {
	return func(a *Analyzer) { a.onFetchError = h }
}

// WithDetectors replaces the default detector suite.
func WithDetectors(ds ...detect.Detector) Option {
	return func(a *Analyzer) { a.detectors = ds }
}

// New builds an analyzer with the full detector suite registered from
// the pattern library, composite detector last.
func New(connectors chain.Connectors, lib *patterns.Library, limits signals.ValueLimits, opts ...Option) *Analyzer {
	a := &Analyzer{
		connectors:   connectors,
		detectors:    defaultDetectors(lib, limits),
		fetchTimeout: DefaultFetchTimeout,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func defaultDetectors(lib *patterns.Library, limits signals.ValueLimits) []detect.Detector {
	var ds []detect.Detector
	if p, ok := lib.For(domain.AttackFrontrunning); ok {
		ds = append(ds, detect.NewFrontrunDetector(p))
	}
	if p, ok := lib.For(domain.AttackSandwich); ok {
		ds = append(ds, detect.NewSandwichDetector(p))
	}
	if p, ok := lib.For(domain.AttackArbitrage); ok {
		ds = append(ds, detect.NewArbitrageDetector(p))
	}
	if p, ok := lib.For(domain.AttackFlashLoan); ok {
		ds = append(ds, detect.NewFlashLoanDetector(p))
	}
	if p, ok := lib.For(domain.AttackOracle); ok {
		ds = append(ds, detect.NewOracleDetector(p))
	}
	ds = append(ds, detect.NewCompositeDetector(limits))
	return ds
}

// AnalyzeBlock fetches the block, filters transactions touching the
// monitored contract, runs every detector, and returns the
// deduplicated alert set. It never returns an error: connector
// failures are logged (and reported through the hook) and yield an
// empty result, so a polling loop can never be crashed by one block.
func (a *Analyzer) AnalyzeBlock(ctx context.Context, chainID domain.ChainID, blockNumber uint64, contractID string) []*domain.Alert {
	block := a.fetchBlock(ctx, chainID, blockNumber, contractID)
	if block == nil {
		return nil
	}

	relevant := FilterByContract(block.Transactions, contractID)
	if len(relevant) == 0 {
		return nil
	}

	return a.AnalyzeTransactions(ctx, block, relevant, chainID, contractID)
}

// AnalyzeTransactions runs the detector suite over an already filtered
// transaction set. Detectors have no data dependencies on each other
// and run concurrently; results are merged at the join in registration
// order, then deduplicated single-threaded.
func (a *Analyzer) AnalyzeTransactions(ctx context.Context, block *domain.Block, txs []*domain.Transaction, chainID domain.ChainID, contractID string) []*domain.Alert {
	in := detect.Input{
		Txs:        txs,
		Block:      block,
		ContractID: contractID,
		ChainID:    chainID,
	}

	results := make([][]*domain.Alert, len(a.detectors))
	g, _ := errgroup.WithContext(ctx)
	for i, d := range a.detectors {
		g.Go(func() error {
			alerts, err := runDetector(d, in)
			if err != nil {
				// One failing detector contributes nothing; the rest
				// still report.
				a.log.Warn("detector failed",
					"attack_type", d.Type(),
					"chain", chainID,
					"block", block.Number,
					"error", err)
				return nil
			}
			results[i] = alerts
			return nil
		})
	}
	_ = g.Wait()

	var merged []*domain.Alert
	for _, alerts := range results {
		merged = append(merged, alerts...)
	}
	return Deduplicate(merged)
}

// runDetector converts a detector panic into an error so malformed
// input can never take down the whole pass.
func runDetector(d detect.Detector, in detect.Input) (alerts []*domain.Alert, err error) {
	defer func() {
		if r := recover(); r != nil {
			alerts = nil
			err = fmt.Errorf("detector panic: %v", r)
		}
	}()
	return d.Detect(in)
}

func (a *Analyzer) fetchBlock(ctx context.Context, chainID domain.ChainID, blockNumber uint64, contractID string) *domain.Block {
	connector, ok := a.connectors[chainID]
	if !ok {
		a.log.Error("no connector for chain", "chain", chainID)
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	block, err := connector.GetBlock(fetchCtx, blockNumber)
	if err != nil {
		a.log.Warn("block fetch failed",
			"chain", chainID,
			"block", blockNumber,
			"error", err)
		if a.onFetchError != nil {
			a.onFetchError(chainID, blockNumber, contractID, err)
		}
		return nil
	}
	if block == nil || len(block.Transactions) == 0 {
		// Empty or future block: terminal empty result, not an error.
		return nil
	}
	return block
}

// FilterByContract returns the transactions whose sender or recipient
// equals the monitored contract, compared case-insensitively.
func FilterByContract(txs []*domain.Transaction, contractID string) []*domain.Transaction {
	target := strings.ToLower(contractID)
	var out []*domain.Transaction
	for _, tx := range txs {
		if strings.ToLower(tx.To) == target || strings.ToLower(tx.From) == target {
			out = append(out, tx)
		}
	}
	return out
}

// Deduplicate drops alerts sharing (contract, attack type, triggering
// transaction) with an earlier one, keeping first-seen.
func Deduplicate(alerts []*domain.Alert) []*domain.Alert {
	if len(alerts) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(alerts))
	out := make([]*domain.Alert, 0, len(alerts))
	for _, alert := range alerts {
		key := strings.ToLower(alert.ContractID) + "|" + string(alert.AttackType) + "|" + strings.ToLower(alert.TxHash)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, alert)
	}
	return out
}
