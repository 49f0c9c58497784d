package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/mevwatch/internal/scan"
)

// RetryQueue reports the number of analyses waiting for retry.
type RetryQueue interface {
	Count(ctx context.Context) (int, error)
}

// Monitor aggregates health status from the scan service and the
// retry queue.
type Monitor struct {
	svc        *scan.Service
	retryQueue RetryQueue // nil when redis is not configured

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport []SessionHealth
}

// NewMonitor creates a new health monitor.
func NewMonitor(svc *scan.Service, retryQueue RetryQueue) *Monitor {
	return &Monitor{svc: svc, retryQueue: retryQueue}
}

// CheckHealth performs a health check for all scan sessions.
func (m *Monitor) CheckHealth(ctx context.Context) []SessionHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit checks to avoid hammering redis on every probe
	if time.Since(m.lastCheck) < 10*time.Second && len(m.lastReport) > 0 {
		return m.lastReport
	}

	pending := 0
	if m.retryQueue != nil {
		if count, err := m.retryQueue.Count(ctx); err == nil {
			pending = count
		}
	}

	var report []SessionHealth
	for _, st := range m.svc.Status() {
		h := SessionHealth{
			ChainID:         string(st.ChainID),
			ContractID:      st.ContractID,
			Status:          StatusHealthy,
			ConnectorErrors: st.ConnectorErrors,
			PendingRetries:  pending,
		}
		if st.LatestBlock > st.LastAnalyzed {
			h.BlockLag = st.LatestBlock - st.LastAnalyzed
		}

		if h.BlockLag > 100 || pending > 50 {
			h.Status = StatusCritical
		} else if h.BlockLag > 10 || pending > 0 || h.ConnectorErrors > 0 {
			h.Status = StatusDegraded
		}

		report = append(report, h)
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}
