package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	revenuesharingengine "tipstream/contexts/finance-core/revenue-sharing-engine"
	"tipstream/contexts/finance-core/revenue-sharing-engine/adapters/memory"
	postgresadapter "tipstream/contexts/finance-core/revenue-sharing-engine/adapters/postgres"
	workerapp "tipstream/contexts/finance-core/revenue-sharing-engine/application/workers"
	"tipstream/contexts/finance-core/revenue-sharing-engine/domain/entities"
	"tipstream/internal/platform/config"
	"tipstream/internal/platform/db"
	"tipstream/internal/platform/httpserver"
	"tipstream/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if cfg.PlatformAddress == "" || cfg.PlatformTreasuryAddress == "" {
		return nil, errors.New("PLATFORM_ADDRESS and PLATFORM_TREASURY_ADDRESS are required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := revenuesharingengine.NewModule(revenuesharingengine.Dependencies{
		Schemes:                       repo,
		Rooms:                         repo,
		Ledger:                        repo,
		Treasury:                      repo,
		Payments:                      memory.NewGateway(),
		Clock:                         postgresadapter.SystemClock{},
		Admin:                         entities.Address(cfg.AdminAddress),
		BlockInactiveSchemeAssignment: cfg.EnforceSchemeActiveOnAssign,
		BlockTipsOnInactiveScheme:     cfg.EnforceSchemeActiveOnTip,
		Logger:                        logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := module.Handler.Service.EnsureDefaultScheme(
		ctx,
		entities.Address(cfg.PlatformAddress),
		entities.Address(cfg.PlatformTreasuryAddress),
	); err != nil {
		_ = pg.Close()
		return nil, err
	}

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			Topic:     "revenue.distribution",
			BatchSize: 100,
			Logger:    logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
