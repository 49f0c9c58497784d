package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/mevwatch/internal/engine/stats"
	"github.com/vietddude/mevwatch/internal/infra/storage"
)

const defaultAlertLimit = 100

// Server provides the HTTP endpoints: health probes, Prometheus
// metrics, and the read-only alert/stats query surface. Queries are
// served from the alert store; detection is never re-run here.
type Server struct {
	monitor    *Monitor
	alerts     storage.AlertRepository
	aggregator *stats.Aggregator
	server     *http.Server
}

// NewServer creates a new health server.
func NewServer(monitor *Monitor, alerts storage.AlertRepository, aggregator *stats.Aggregator, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		monitor:    monitor,
		alerts:     alerts,
		aggregator: aggregator,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.HandleFunc("/alerts", s.handleAlerts)
	mux.HandleFunc("/stats", s.handleStats)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth(r.Context())
	status := StatusHealthy

	// Aggregate status (worst case wins)
	for _, session := range report {
		if session.Status == StatusCritical {
			status = StatusCritical
			break
		}
		if session.Status == StatusDegraded {
			status = StatusDegraded
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if status == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(map[string]string{"status": string(status)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	contract := r.URL.Query().Get("contract")
	if contract == "" {
		http.Error(w, "contract query parameter required", http.StatusBadRequest)
		return
	}

	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	alerts, err := s.alerts.ListByContract(r.Context(), contract, limit)
	if err != nil {
		http.Error(w, "failed to load alerts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(alerts)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	contract := r.URL.Query().Get("contract")
	if contract == "" {
		http.Error(w, "contract query parameter required", http.StatusBadRequest)
		return
	}

	rollup, err := s.aggregator.Stats(r.Context(), contract)
	if err != nil {
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rollup)
}
