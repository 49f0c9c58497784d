package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/analyzer"
	"github.com/vietddude/mevwatch/internal/engine/patterns"
	"github.com/vietddude/mevwatch/internal/engine/signals"
	"github.com/vietddude/mevwatch/internal/engine/stats"
	"github.com/vietddude/mevwatch/internal/infra/chain"
	"github.com/vietddude/mevwatch/internal/infra/storage/memory"
	"github.com/vietddude/mevwatch/internal/scan"
)

func newTestServer(t *testing.T) (*Server, *memory.AlertRepo) {
	t.Helper()

	connectors := chain.Connectors{}
	eng := analyzer.New(connectors, patterns.NewLibrary(), signals.DefaultValueLimits)
	repo := memory.NewAlertRepo()
	svc := scan.NewService(scan.Config{}, eng, connectors, repo, nil)

	monitor := NewMonitor(svc, nil)
	aggregator := stats.NewAggregator(repo)
	return NewServer(monitor, repo, aggregator, 0), repo
}

func seedAlerts(t *testing.T, repo *memory.AlertRepo) {
	t.Helper()
	alerts := []*domain.Alert{
		{ID: "1", ContractID: "0xC", AttackType: domain.AttackSandwich, RiskLevel: domain.RiskHigh, TxHash: "0x1", DetectedAt: 100},
		{ID: "2", ContractID: "0xC", AttackType: domain.AttackArbitrage, RiskLevel: domain.RiskMedium, TxHash: "0x2", DetectedAt: 200},
	}
	if err := repo.SaveBatch(context.Background(), alerts); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("Expected healthy, got %s", body["status"])
	}
}

func TestHandleAlerts(t *testing.T) {
	srv, repo := newTestServer(t)
	seedAlerts(t, repo)

	rec := httptest.NewRecorder()
	srv.handleAlerts(rec, httptest.NewRequest(http.MethodGet, "/alerts?contract=0xC", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var alerts []*domain.Alert
	if err := json.NewDecoder(rec.Body).Decode(&alerts); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].ID != "2" {
		t.Errorf("Expected newest alert first, got %s", alerts[0].ID)
	}
}

func TestHandleAlerts_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.handleAlerts(rec, httptest.NewRequest(http.MethodGet, "/alerts", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without contract, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.handleAlerts(rec, httptest.NewRequest(http.MethodGet, "/alerts?contract=0xC&limit=nope", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestHandleStats(t *testing.T) {
	srv, repo := newTestServer(t)
	seedAlerts(t, repo)

	rec := httptest.NewRecorder()
	srv.handleStats(rec, httptest.NewRequest(http.MethodGet, "/stats?contract=0xC", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var out domain.AlertStats
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if out.TotalAlerts != 2 {
		t.Errorf("Expected 2 total alerts, got %d", out.TotalAlerts)
	}
	if out.AlertsByType[domain.AttackSandwich] != 1 {
		t.Errorf("Expected 1 sandwich, got %d", out.AlertsByType[domain.AttackSandwich])
	}
	if out.LastAlertAt != 200 {
		t.Errorf("Expected last alert at 200, got %d", out.LastAlertAt)
	}
}
