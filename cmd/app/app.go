// Package main is the entry point for the exchange rate service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ratesvc/internal/auth"
	"ratesvc/internal/cache"
	"ratesvc/internal/config"
	"ratesvc/internal/metrics"
	"ratesvc/internal/provider"
	"ratesvc/internal/repository"
	"ratesvc/internal/resilience"
	"ratesvc/internal/service"
	"ratesvc/internal/worker"
)

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg         *config.Config
	logger      *zap.SugaredLogger
	db          *sql.DB
	rdbCache    *redis.Client
	rdbAsynq    *redis.Client
	memCache    *cache.MemoryCache
	asynqClient *asynq.Client
	asynqServer *asynq.Server
	asynqMux    *asynq.ServeMux
	metrics     *metrics.Metrics
	issuer      *auth.TokenIssuer
	fetchRepo   *repository.FetchLogRepository
	httpServer  *http.Server
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initStorage(); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases database and Redis connections
func (app *App) close() error {
	var errs []error
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynq client close: %w", err))
		}
	}
	if app.rdbAsynq != nil {
		if err := app.rdbAsynq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis asynq close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	if app.memCache != nil {
		app.memCache.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) initStorage() error {
	db, err := repository.NewPostgresDB(&app.cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to Postgres: %w", err)
	}
	app.db = db

	if err := repository.RunMigrations(app.db, app.logger); err != nil {
		return fmt.Errorf("run DB migrations: %w", err)
	}

	if app.cfg.Cache.Backend == "redis" {
		app.rdbCache = redis.NewClient(&redis.Options{
			Addr: app.cfg.Redis.CacheAddr,
		})
		if err := app.rdbCache.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
		}
		app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr)
	}

	return nil
}

func (app *App) initServices() error {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.asynqClient = asynq.NewClient(redisOpt)
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:              app.cfg.Worker.Concurrency,
			DelayedTaskCheckInterval: time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
			TaskCheckInterval:        time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
		},
	)
	app.logger.Infow("Asynq configured", "addr", app.cfg.Redis.AsynqAddr)

	app.metrics = metrics.NewMetrics(prometheus.DefaultRegisterer)

	rateProvider, err := newRateProvider(app.cfg)
	if err != nil {
		return err
	}

	invoker := resilience.NewInvoker(app.cfg.Provider.Active, resilience.Config{
		RetryMaxAttempts:    app.cfg.Resilience.RetryMaxAttempts,
		RetryInitialBackoff: time.Duration(app.cfg.Resilience.RetryInitialBackoffSec) * time.Second,
		BreakerFailureLimit: app.cfg.Resilience.BreakerFailureLimit,
		BreakerCooldown:     time.Duration(app.cfg.Resilience.BreakerCooldownSec) * time.Second,
	}, app.logger, app.metrics)

	rateCache := app.newRateCache()

	app.fetchRepo = repository.NewFetchLogRepository(app.db)
	archiver := worker.NewAsynqArchiver(
		app.asynqClient,
		app.cfg.Worker.MaxRetry,
		time.Duration(app.cfg.Worker.TimeoutSec)*time.Second,
	)

	rateService := service.NewRateService(
		rateProvider,
		app.cfg.Provider.Active,
		invoker,
		rateCache,
		service.NewExcludedSet(app.cfg.Currency.Excluded),
		archiver,
		app.logger,
		app.metrics,
		app.cfg.Cache,
	)

	app.issuer = auth.NewTokenIssuer(app.cfg.Auth)

	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(service.TaskTypeArchiveFetch, worker.NewArchiveFetchHandler(app.fetchRepo, app.logger))

	app.initHTTP(rateService)
	return nil
}

// newRateCache picks the configured cache backend. The in-process backend
// runs a janitor so expired entries do not pile up between requests.
func (app *App) newRateCache() cache.RateCache {
	if app.cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(app.rdbCache)
	}

	mem := cache.NewMemoryCache()
	if app.cfg.Cache.JanitorIntervalSec > 0 {
		mem.StartJanitor(time.Duration(app.cfg.Cache.JanitorIntervalSec) * time.Second)
	}
	app.memCache = mem
	return mem
}

// newRateProvider builds the provider registry and resolves the active source.
func newRateProvider(cfg *config.Config) (provider.RateProvider, error) {
	registry := provider.NewRegistry()

	registry.Register("frankfurter", provider.NewFrankfurterProvider(
		cfg.Provider.Frankfurter.BaseURL,
		cfg.Provider.Frankfurter.Timeout,
	))

	if cfg.Provider.ExchangeRateHost.APIKey != "" {
		registry.Register("exchangerate_host", provider.NewExchangeRateHostProvider(
			cfg.Provider.ExchangeRateHost.BaseURL,
			cfg.Provider.ExchangeRateHost.APIKey,
			cfg.Provider.ExchangeRateHost.Timeout,
		))
	}

	active, err := registry.Resolve(cfg.Provider.Active)
	if err != nil {
		return nil, fmt.Errorf("resolve active provider %q: %w", cfg.Provider.Active, err)
	}
	return active, nil
}

// Run starts the HTTP server and Asynq worker, blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Infow("Starting Asynq worker server")
		if err := app.asynqServer.Start(app.asynqMux); err != nil {
			return fmt.Errorf("asynq worker failed to start: %w", err)
		}

		<-ctx.Done()
		return nil
	})

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown: triggered by context cancellation (signal or component failure).
	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server -> Asynq worker -> connections.
// This ensures in-flight archive tasks finish before the DB and Redis connections close.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests, drain in-flight
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	// 2. Drain in-flight Asynq tasks
	app.asynqServer.Shutdown()

	// 3. Close connections (asynq client, Redis, database)
	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}
