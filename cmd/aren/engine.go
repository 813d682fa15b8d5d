package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	arennats "github.com/arenlabs/aren/internal/adapter/nats"
	"github.com/arenlabs/aren/internal/adapter/natskv"
	arenotel "github.com/arenlabs/aren/internal/adapter/otel"
	"github.com/arenlabs/aren/internal/adapter/postgres"
	"github.com/arenlabs/aren/internal/adapter/prefsfile"
	"github.com/arenlabs/aren/internal/adapter/ristretto"
	"github.com/arenlabs/aren/internal/adapter/tiered"
	"github.com/arenlabs/aren/internal/adapter/weather"
	"github.com/arenlabs/aren/internal/config"
	"github.com/arenlabs/aren/internal/domain/capability"
	"github.com/arenlabs/aren/internal/domain/systeminfo"
	"github.com/arenlabs/aren/internal/pool"
	"github.com/arenlabs/aren/internal/port/cache"
	"github.com/arenlabs/aren/internal/port/handler"
	"github.com/arenlabs/aren/internal/port/messagequeue"
	"github.com/arenlabs/aren/internal/resilience"
	"github.com/arenlabs/aren/internal/secrets"
	"github.com/arenlabs/aren/internal/service"
)

// engine bundles the wired core that every front end drives. The HTTP API,
// the REPL and the MCP transports all sit on the same orchestrator.
type engine struct {
	pool         *pgxpool.Pool
	store        *postgres.Store
	queue        messagequeue.Queue
	l1           *ristretto.Cache
	vault        *secrets.Vault
	catalog      *capability.Catalog
	contexts     *service.ContextService
	decisions    *service.DecisionService
	dispatcher   *service.DispatchService
	orchestrator *service.OrchestratorService
}

// buildEngine wires postgres, NATS, the cache tiers and the capability
// handlers into a ready orchestrator. Postgres is always required. When
// needQueue is false a NATS failure degrades the engine instead of failing
// it: events are skipped and caching stays in-process only.
func buildEngine(ctx context.Context, cfg *config.Config, log *slog.Logger, needQueue bool) (*engine, error) {
	pgPool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	eng := &engine{pool: pgPool}
	ready := false
	defer func() {
		if !ready {
			eng.close()
		}
	}()

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	eng.store = postgres.NewStore(pgPool)

	for _, fact := range systeminfo.Defaults() {
		if err := eng.store.UpsertFact(ctx, fact); err != nil {
			return nil, fmt.Errorf("seed identity facts: %w", err)
		}
	}

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return nil, fmt.Errorf("l1 cache: %w", err)
	}
	eng.l1 = l1
	var cacheStore cache.Cache = l1

	nq, err := arennats.Connect(ctx, cfg.NATS.URL)
	switch {
	case err == nil:
		kv, kvErr := nq.KeyValue(ctx, cfg.Cache.L2Bucket, cfg.Cache.L2TTL)
		if kvErr != nil {
			_ = nq.Close()
			return nil, fmt.Errorf("cache bucket: %w", kvErr)
		}
		cacheStore = tiered.New(l1, natskv.New(kv), cfg.Cache.L1TTL)
		eng.queue = nq
	case needQueue:
		return nil, fmt.Errorf("nats: %w", err)
	default:
		log.Warn("nats unreachable, events and shared cache disabled", "error", err)
	}

	vault, err := secrets.NewVault(secrets.EnvLoader(weather.SecretAPIKey))
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	eng.vault = vault

	handlers, err := handler.BuildAll(handler.Deps{
		Store:      eng.store,
		Cache:      cacheStore,
		Secrets:    vault,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     log,
		Config:     *cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("capability handlers: %w", err)
	}

	var metrics *arenotel.Metrics
	if cfg.Telemetry.Enabled {
		if metrics, err = arenotel.NewMetrics(); err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}

	eng.catalog = capability.Default()
	eng.contexts = service.NewContextService(eng.store, prefsfile.New(cfg.Prefs.Dir), eng.queue, log)
	eng.decisions = service.NewDecisionService(eng.catalog, log)
	eng.dispatcher = service.NewDispatchService(
		handlers,
		eng.contexts,
		resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout),
		pool.New(cfg.Dispatch.MaxConcurrentCalls),
		cfg.Dispatch.HandlerTimeout,
		metrics,
		log,
	)
	eng.orchestrator = service.NewOrchestratorService(eng.contexts, eng.decisions, eng.dispatcher, eng.queue, metrics, log)

	ready = true
	return eng, nil
}

// close releases the engine's connections.
func (e *engine) close() {
	if e.queue != nil {
		_ = e.queue.Close()
	}
	if e.l1 != nil {
		e.l1.Close()
	}
	e.pool.Close()
}
