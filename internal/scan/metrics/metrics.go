package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BlocksAnalyzed tracks total blocks run through the detector suite
	BlocksAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mevwatch_blocks_analyzed_total",
			Help: "Total number of blocks analyzed",
		},
		[]string{"chain"},
	)

	// AlertsEmitted tracks alerts produced per chain, type, and risk
	AlertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mevwatch_alerts_emitted_total",
			Help: "Total number of MEV alerts emitted",
		},
		[]string{"chain", "attack_type", "risk_level"},
	)

	// ConnectorErrors tracks block fetch failures per chain
	ConnectorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mevwatch_connector_errors_total",
			Help: "Total number of chain connector errors",
		},
		[]string{"chain"},
	)

	// StorageErrors tracks alert store write failures per chain
	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mevwatch_storage_errors_total",
			Help: "Total number of alert store write failures",
		},
		[]string{"chain"},
	)

	// AnalysisLatency tracks the detector suite latency per block
	AnalysisLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mevwatch_analysis_latency_seconds",
			Help:    "Block analysis latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"chain"},
	)

	// ChainLatestBlock tracks the latest block height of the chain
	ChainLatestBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mevwatch_chain_latest_block",
			Help: "Latest block height of the chain",
		},
		[]string{"chain"},
	)

	// ScanLatestBlock tracks the latest block analyzed by the scanner
	ScanLatestBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mevwatch_scan_latest_block",
			Help: "Latest block height analyzed by the scanner",
		},
		[]string{"chain"},
	)
)
