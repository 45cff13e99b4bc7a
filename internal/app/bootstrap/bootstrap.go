package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	workflowengine "wikigaia/contexts/community-platform/workflow-engine"
	messagingadapter "wikigaia/contexts/community-platform/workflow-engine/adapters/messaging"
	postgresadapter "wikigaia/contexts/community-platform/workflow-engine/adapters/postgres"
	redisadapter "wikigaia/contexts/community-platform/workflow-engine/adapters/redis"
	workerapp "wikigaia/contexts/community-platform/workflow-engine/application/workers"
	"wikigaia/contexts/community-platform/workflow-engine/ports"
	"wikigaia/internal/platform/cache"
	"wikigaia/internal/platform/config"
	"wikigaia/internal/platform/db"
	"wikigaia/internal/platform/httpserver"
	"wikigaia/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *cache.Redis
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	relayEnabled bool
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

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	var (
		redisConn *cache.Redis
		viewCache ports.ViewCache
	)
	if cfg.EnableViewCache && strings.TrimSpace(cfg.RedisURL) != "" {
		redisConn, err = cache.Connect(cfg.RedisURL)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		viewCache = redisadapter.NewViewCache(redisConn.Client)
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		_ = redisConn.Close()
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := workflowengine.NewModule(workflowengine.Dependencies{
		Problems: repo,
		Log:      repo,
		Queue:    repo,
		Notifier: messagingadapter.BusNotifier{
			Publisher: bus,
			IDGen:     postgresadapter.UUIDGenerator{},
			Clock:     postgresadapter.SystemClock{},
		},
		Cache:   viewCache,
		Clock:   postgresadapter.SystemClock{},
		IDGen:   postgresadapter.UUIDGenerator{},
		ViewTTL: cfg.ViewCacheTTL,
		Logger:  logger,
	})

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    redisConn,
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

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		pollInterval: cfg.OutboxPollInterval,
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
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if !w.relayEnabled {
		w.logger.Info("outbox relay disabled; worker idling",
			"event", "bootstrap_worker_relay_disabled",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				w.logger.Error("outbox relay cycle failed",
					"event", "bootstrap_worker_relay_cycle_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
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
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
