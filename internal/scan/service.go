// Package scan runs the polling loops that feed blocks into the
// detection engine, one session per (chain, monitored contract).
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/analyzer"
	"github.com/vietddude/mevwatch/internal/infra/chain"
	redisclient "github.com/vietddude/mevwatch/internal/infra/redis"
	"github.com/vietddude/mevwatch/internal/infra/storage"
	"github.com/vietddude/mevwatch/internal/scan/metrics"
)

// Session is one polling unit: a monitored contract on a chain.
type Session struct {
	ChainID    domain.ChainID
	ContractID string
	Interval   time.Duration
}

// Config holds scan service configuration.
type Config struct {
	Sessions []Session

	// MaxConcurrency caps concurrent block analyses per session to
	// respect upstream RPC rate limits.
	MaxConcurrency int

	// MaxBlocksPerTick bounds catch-up after a slow tick.
	MaxBlocksPerTick int

	// RetryInterval is the cadence of the failed-analysis retry worker.
	RetryInterval time.Duration
}

// ChainStatus is a point-in-time view of one session for health
// reporting.
type ChainStatus struct {
	ChainID         domain.ChainID `json:"chain_id"`
	ContractID      string         `json:"contract_id"`
	LatestBlock     uint64         `json:"latest_block"`
	LastAnalyzed    uint64         `json:"last_analyzed"`
	ConnectorErrors uint64         `json:"connector_errors"`
}

// Service drives block analysis on a polling cadence and persists the
// resulting alerts. Sessions are independent; failures in one never
// stall another.
type Service struct {
	cfg        Config
	analyzer   *analyzer.Analyzer
	connectors chain.Connectors
	alerts     storage.AlertRepository
	failed     *redisclient.FailedAnalysisQueue // nil = no retry queue
	log        *slog.Logger

	mu     sync.RWMutex
	status map[string]*ChainStatus

	running atomic.Bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

func NewService(
	cfg Config,
	a *analyzer.Analyzer,
	connectors chain.Connectors,
	alerts storage.AlertRepository,
	failed *redisclient.FailedAnalysisQueue,
) *Service {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.MaxBlocksPerTick <= 0 {
		cfg.MaxBlocksPerTick = 10
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 30 * time.Second
	}
	return &Service{
		cfg:        cfg,
		analyzer:   a,
		connectors: connectors,
		alerts:     alerts,
		failed:     failed,
		log:        slog.Default(),
		status:     make(map[string]*ChainStatus),
		stop:       make(chan struct{}),
	}
}

// Start launches one polling loop per session plus the retry worker.
func (s *Service) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("scan service already running")
	}

	for _, session := range s.cfg.Sessions {
		if _, ok := s.connectors[session.ChainID]; !ok {
			return fmt.Errorf("no connector for chain %s", session.ChainID)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runSession(ctx, session)
		}()
	}

	if s.failed != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runRetryWorker(ctx)
		}()
	}

	return nil
}

// Stop signals all loops and waits for them to drain.
func (s *Service) Stop() {
	if s.running.CompareAndSwap(true, false) {
		close(s.stop)
	}
	s.wg.Wait()
}

// Status returns a snapshot of every session's progress.
func (s *Service) Status() []ChainStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ChainStatus, 0, len(s.status))
	for _, st := range s.status {
		out = append(out, *st)
	}
	return out
}

// RecordFetchFailure is the analyzer hook: counts the failure and
// parks the block on the retry queue.
func (s *Service) RecordFetchFailure(chainID domain.ChainID, blockNumber uint64, contractID string, err error) {
	metrics.ConnectorErrors.WithLabelValues(string(chainID)).Inc()

	s.mu.Lock()
	if st := s.status[sessionKey(chainID, contractID)]; st != nil {
		st.ConnectorErrors++
	}
	s.mu.Unlock()

	if s.failed == nil {
		return
	}
	fa := &domain.FailedAnalysis{
		ID:          uuid.NewString(),
		ChainID:     string(chainID),
		ContractID:  contractID,
		BlockNumber: blockNumber,
		FailureType: domain.FailureTypeRPC,
		Error:       err.Error(),
		FailedAt:    uint64(time.Now().Unix()),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.failed.Add(ctx, fa); err != nil {
		s.log.Warn("failed to enqueue analysis retry", "chain", chainID, "block", blockNumber, "error", err)
	}
}

func (s *Service) runSession(ctx context.Context, session Session) {
	interval := session.Interval
	if interval <= 0 {
		interval = 12 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("scan session started",
		"chain", session.ChainID,
		"contract", session.ContractID,
		"interval", interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.tick(ctx, session)
		}
	}
}

func (s *Service) tick(ctx context.Context, session Session) {
	connector := s.connectors[session.ChainID]

	latest, err := connector.GetLatestBlock(ctx)
	if err != nil {
		metrics.ConnectorErrors.WithLabelValues(string(session.ChainID)).Inc()
		s.log.Warn("latest block fetch failed", "chain", session.ChainID, "error", err)
		return
	}
	metrics.ChainLatestBlock.WithLabelValues(string(session.ChainID)).Set(float64(latest))

	st := s.sessionStatus(session)
	from := st.LastAnalyzed + 1
	if st.LastAnalyzed == 0 {
		from = latest // first tick starts at head
	}
	if latest < from {
		return // no new block yet
	}
	if latest-from+1 > uint64(s.cfg.MaxBlocksPerTick) {
		from = latest - uint64(s.cfg.MaxBlocksPerTick) + 1
	}

	// Blocks are independent units of work: analyze concurrently under
	// the configured cap.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrency)
	for n := from; n <= latest; n++ {
		g.Go(func() error {
			s.analyzeAndStore(gctx, session, n)
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	st.LatestBlock = latest
	if latest > st.LastAnalyzed {
		st.LastAnalyzed = latest
	}
	s.mu.Unlock()
	metrics.ScanLatestBlock.WithLabelValues(string(session.ChainID)).Set(float64(latest))
}

func (s *Service) analyzeAndStore(ctx context.Context, session Session, blockNumber uint64) {
	start := time.Now()
	alerts := s.analyzer.AnalyzeBlock(ctx, session.ChainID, blockNumber, session.ContractID)
	metrics.BlocksAnalyzed.WithLabelValues(string(session.ChainID)).Inc()
	metrics.AnalysisLatency.WithLabelValues(string(session.ChainID)).Observe(time.Since(start).Seconds())

	if len(alerts) == 0 {
		return
	}

	for _, alert := range alerts {
		metrics.AlertsEmitted.WithLabelValues(
			string(session.ChainID),
			string(alert.AttackType),
			string(alert.RiskLevel),
		).Inc()
	}

	// Write failures drop the alerts for this invocation; detection is
	// memoryless, the next block self-heals.
	if err := s.alerts.SaveBatch(ctx, alerts); err != nil {
		metrics.StorageErrors.WithLabelValues(string(session.ChainID)).Inc()
		s.log.Error("failed to persist alerts",
			"chain", session.ChainID,
			"block", blockNumber,
			"count", len(alerts),
			"error", err)
		return
	}

	s.log.Info("alerts persisted",
		"chain", session.ChainID,
		"contract", session.ContractID,
		"block", blockNumber,
		"count", len(alerts))
}

// runRetryWorker drains the failed-analysis queue: a block is
// re-fetched, re-analyzed on success, or re-queued with a bumped retry
// count.
func (s *Service) runRetryWorker(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.retryNext(ctx)
		}
	}
}

func (s *Service) retryNext(ctx context.Context) {
	fa, err := s.failed.GetNext(ctx)
	if err != nil {
		s.log.Warn("failed analysis queue read failed", "error", err)
		return
	}
	if fa == nil {
		return
	}

	chainID := domain.ChainID(fa.ChainID)
	connector, ok := s.connectors[chainID]
	if !ok {
		// Connector no longer configured; nothing to retry against.
		_ = s.failed.MarkResolved(ctx, fa.ID)
		return
	}

	block, err := connector.GetBlock(ctx, fa.BlockNumber)
	if err != nil || block == nil {
		if err := s.failed.IncrementRetry(ctx, fa.ID); err != nil {
			s.log.Warn("failed to bump retry count", "id", fa.ID, "error", err)
		}
		return
	}

	relevant := analyzer.FilterByContract(block.Transactions, fa.ContractID)
	if len(relevant) > 0 {
		alerts := s.analyzer.AnalyzeTransactions(ctx, block, relevant, chainID, fa.ContractID)
		if len(alerts) > 0 {
			if err := s.alerts.SaveBatch(ctx, alerts); err != nil {
				metrics.StorageErrors.WithLabelValues(fa.ChainID).Inc()
				s.log.Error("failed to persist retried alerts", "block", fa.BlockNumber, "error", err)
				return
			}
		}
	}

	if err := s.failed.MarkResolved(ctx, fa.ID); err != nil {
		s.log.Warn("failed to resolve retry entry", "id", fa.ID, "error", err)
	}
}

func (s *Service) sessionStatus(session Session) *ChainStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(session.ChainID, session.ContractID)
	st, ok := s.status[key]
	if !ok {
		st = &ChainStatus{ChainID: session.ChainID, ContractID: session.ContractID}
		s.status[key] = st
	}
	return st
}

func sessionKey(chainID domain.ChainID, contractID string) string {
	return string(chainID) + "|" + contractID
}
