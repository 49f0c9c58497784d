package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/mevwatch/internal/core/config"
	"github.com/vietddude/mevwatch/internal/core/domain"
	"github.com/vietddude/mevwatch/internal/engine/analyzer"
	"github.com/vietddude/mevwatch/internal/engine/patterns"
	"github.com/vietddude/mevwatch/internal/engine/signals"
	"github.com/vietddude/mevwatch/internal/engine/stats"
	"github.com/vietddude/mevwatch/internal/infra/chain"
	"github.com/vietddude/mevwatch/internal/infra/chain/evm"
	redisclient "github.com/vietddude/mevwatch/internal/infra/redis"
	"github.com/vietddude/mevwatch/internal/infra/rpc"
	"github.com/vietddude/mevwatch/internal/infra/rpc/provider"
	"github.com/vietddude/mevwatch/internal/infra/rpc/routing"
	"github.com/vietddude/mevwatch/internal/infra/storage"
	"github.com/vietddude/mevwatch/internal/infra/storage/memory"
	"github.com/vietddude/mevwatch/internal/infra/storage/postgres"
	"github.com/vietddude/mevwatch/internal/scan"
	"github.com/vietddude/mevwatch/internal/scan/health"
)

// Watcher is the main application struct that manages the scanning and
// detection lifecycle.
type Watcher struct {
	cfg          *config.AppConfig
	service      *scan.Service
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// NewWatcher creates a new Watcher instance with all dependencies initialized.
func NewWatcher(cfg *config.AppConfig) (*Watcher, error) {

	// 1. Initialize Storage
	var alertRepo storage.AlertRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		// Assuming migrations are in "migrations" folder relative to CWD
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		alertRepo = postgres.NewAlertRepo(db)
		slog.Info("Using PostgreSQL storage")
	} else {
		alertRepo = memory.NewAlertRepo()
		slog.Info("Using Memory storage")
	}

	// 2. Initialize RPC Routing & Chain Connectors
	connectors := make(chain.Connectors)
	scanIntervals := make(map[domain.ChainID]time.Duration)

	for _, chainCfg := range cfg.Chains {
		chainID := chainCfg.ChainID
		scanIntervals[chainID] = chainCfg.ScanInterval

		router := routing.NewRouter()
		for _, p := range chainCfg.Providers {
			router.AddProvider(chainID, provider.NewHTTPProvider(
				p.Name,
				p.URL,
				10*time.Second,
			))
		}

		client := rpc.NewClient(chainID, router)
		connectors[chainID] = evm.NewConnector(chainID, client)
		slog.Info("Chain connector initialized",
			"chainID", chainID,
			"name", domain.ChainIDToName[chainID],
			"providers", len(chainCfg.Providers))
	}

	// 3. Initialize Redis Retry Queue
	var redisClient *redisclient.Client
	var failedQueue *redisclient.FailedAnalysisQueue
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, retry queue disabled", "error", err)
		} else {
			failedQueue = redisclient.NewFailedAnalysisQueue(redisClient, "mevwatch")
			slog.Info("Failed analysis retry queue initialized")
		}
	}

	// 4. Initialize Detection Engine
	limits := signals.ValueLimits{
		MaxSingle: cfg.Engine.MaxSingleValue,
		MaxTotal:  cfg.Engine.MaxTotalValue,
	}
	lib := patterns.NewLibrary()

	// The fetch error hook feeds the scan service's retry queue. The
	// service does not exist yet, so the hook closes over a variable
	// assigned below.
	var service *scan.Service
	eng := analyzer.New(connectors, lib, limits,
		analyzer.WithFetchTimeout(cfg.Engine.FetchTimeout),
		analyzer.WithFetchErrorHook(func(chainID domain.ChainID, blockNumber uint64, contractID string, err error) {
			if service != nil {
				service.RecordFetchFailure(chainID, blockNumber, contractID, err)
			}
		}),
	)

	// 5. Initialize Scan Service
	sessions := make([]scan.Session, 0, len(cfg.Contracts))
	for _, c := range cfg.Contracts {
		if _, ok := connectors[c.ChainID]; !ok {
			return nil, fmt.Errorf("contract %s references unconfigured chain %s", c.Address, c.ChainID)
		}
		sessions = append(sessions, scan.Session{
			ChainID:    c.ChainID,
			ContractID: c.Address,
			Interval:   scanIntervals[c.ChainID],
		})
	}

	service = scan.NewService(scan.Config{
		Sessions:         sessions,
		MaxConcurrency:   cfg.Engine.MaxConcurrency,
		MaxBlocksPerTick: cfg.Engine.MaxBlocksPerTick,
		RetryInterval:    cfg.Engine.RetryInterval,
	}, eng, connectors, alertRepo, failedQueue)

	// 6. Initialize Health Monitor & HTTP Server
	var retryQueue health.RetryQueue
	if failedQueue != nil {
		retryQueue = failedQueue
	}
	healthMon := health.NewMonitor(service, retryQueue)
	aggregator := stats.NewAggregator(alertRepo)
	healthServer := health.NewServer(healthMon, alertRepo, aggregator, cfg.Server.Port)

	return &Watcher{
		cfg:          cfg,
		service:      service,
		healthServer: healthServer,
		db:           db,
		redisClient:  redisClient,
		log:          slog.Default(),
	}, nil
}

// Start starts the watcher and all its components.
func (w *Watcher) Start(ctx context.Context) error {
	// Start HTTP Server
	go func() {
		if err := w.healthServer.Start(); err != nil {
			w.log.Error("Health server failed", "error", err)
		}
	}()

	// Start Scan Service
	w.log.Info("Starting scan service", "sessions", len(w.cfg.Contracts))
	return w.service.Start(ctx)
}

// Stop stops the watcher.
func (w *Watcher) Stop(ctx context.Context) error {
	w.log.Info("Stopping Watcher...")

	w.service.Stop()

	// Close Redis
	if w.redisClient != nil {
		if err := w.redisClient.Close(); err != nil {
			w.log.Warn("Failed to close Redis", "error", err)
		}
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			w.log.Warn("Failed to close database", "error", err)
		}
	}

	// Stop Health Server
	return w.healthServer.Stop(ctx)
}
