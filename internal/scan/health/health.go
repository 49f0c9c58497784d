// Package health provides system health monitoring and the HTTP query
// surface for alerts and stats.
package health

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// SessionHealth contains health metrics for one scan session.
type SessionHealth struct {
	ChainID         string       `json:"chain_id"`
	ContractID      string       `json:"contract_id"`
	Status          SystemStatus `json:"status"`
	BlockLag        uint64       `json:"block_lag"`
	ConnectorErrors uint64       `json:"connector_errors"`
	PendingRetries  int          `json:"pending_retries"`
}
