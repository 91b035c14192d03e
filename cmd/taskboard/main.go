package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"github.com/taskboardhq/taskboard/pkg/api"
	"github.com/taskboardhq/taskboard/pkg/audit"
	"github.com/taskboardhq/taskboard/pkg/auth"
	"github.com/taskboardhq/taskboard/pkg/authz"
	"github.com/taskboardhq/taskboard/pkg/boards"
	"github.com/taskboardhq/taskboard/pkg/cache"
	"github.com/taskboardhq/taskboard/pkg/config"
	"github.com/taskboardhq/taskboard/pkg/events"
	"github.com/taskboardhq/taskboard/pkg/observability"
	"github.com/taskboardhq/taskboard/pkg/readmodel"
	"github.com/taskboardhq/taskboard/pkg/registry"
	"github.com/taskboardhq/taskboard/pkg/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, os.Stdout)

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	// Database
	db, err := store.Connect(cfg.Database)
	if err != nil {
		logger.WithError(err).Error("failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := store.RunMigrations(ctx, db); err != nil {
		logger.WithError(err).Error("migrations failed")
		os.Exit(1)
	}
	st := store.NewStore(db)

	// Cache: local LRU always, Redis in front when reachable. A Redis
	// failure at startup degrades to in-process caching only.
	local := cache.NewMemory(0, metrics)
	var remote *cache.Redis
	if cfg.Redis.URL != "" {
		remote, err = cache.NewRedis(cfg.Redis, metrics)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, using in-process cache only")
			remote = nil
		}
	}
	tiered := cache.NewTiered(local, remote, logger)
	defer tiered.Close()

	// Permission registry with persisted-copy reconciliation
	reg := registry.New(logger)
	syncer := registry.NewSyncer(db, reg, logger)
	if err := syncer.Sync(ctx); err != nil {
		logger.WithError(err).Error("startup registry sync failed")
		os.Exit(1)
	}
	if cfg.Registry.SyncSchedule != "" {
		if err := syncer.Schedule(cfg.Registry.SyncSchedule); err != nil {
			logger.WithError(err).Warn("registry sync schedule invalid, periodic sync disabled")
		}
	}

	// Audit trail
	auditLogger, err := audit.NewDBLogger(db)
	if err != nil {
		logger.WithError(err).Error("failed to initialize audit logger")
		os.Exit(1)
	}

	// Auth stack
	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		logger.WithError(err).Error("invalid auth configuration")
		os.Exit(1)
	}
	blacklist := auth.NewBlacklist(tiered)
	var sessions auth.SessionReader
	if cfg.Auth.SessionFallback {
		sessions = auth.NewCookieSession(tokens)
	}
	resolver := auth.NewResolver(st, reg, tokens, blacklist, tiered, cfg.Auth.ContextTTL, sessions, logger, metrics)
	enforcer := authz.NewEnforcer(reg, auditLogger, logger, metrics)

	// Domain services and read model
	bus := events.NewBus(0, logger, metrics)
	boardSvc := boards.NewService(st, tiered, bus, auditLogger, logger)
	projector := readmodel.NewProjector(st, tiered, logger)
	projector.Register(bus)

	server := api.NewServer(api.Deps{
		Store:     st,
		Registry:  reg,
		Tokens:    tokens,
		Resolver:  resolver,
		Blacklist: blacklist,
		Enforcer:  enforcer,
		Boards:    boardSvc,
		Projector: projector,
		Syncer:    syncer,
		Bus:       bus,
		Audit:     auditLogger,
		Logger:    logger,
		Metrics:   metrics,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port for probes
	healthRouter := mux.NewRouter()
	health := observability.NewHealthChecker(db, redisClientOf(remote))
	healthRouter.HandleFunc("/healthz", health.Liveness).Methods("GET")
	healthRouter.HandleFunc("/readyz", health.Readiness).Methods("GET")
	if metrics != nil {
		healthRouter.Handle("/metrics", metrics.Handler()).Methods("GET")
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthRouter,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return syncer.Stop(ctx)
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return bus.Close(ctx)
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return auditLogger.Close()
	})

	go func() {
		logger.Infof("health server listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health server failed")
		}
	}()

	go func() {
		logger.Infof("taskboard API listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("API server failed")
			os.Exit(1)
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}
}

// redisClientOf unwraps the raw client for health checks; nil when the
// remote tier is disabled
func redisClientOf(r *cache.Redis) *redis.Client {
	if r == nil {
		return nil
	}
	return r.Client()
}
