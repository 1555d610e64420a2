package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecotrace/internal/auth"
	"ecotrace/internal/cache"
	"ecotrace/internal/config"
	"ecotrace/internal/database"
	"ecotrace/internal/logging"
	"ecotrace/internal/metrics"
	"ecotrace/internal/repositories"
	"ecotrace/internal/repositories/memory"
	"ecotrace/internal/response"
	"ecotrace/internal/router"
	"ecotrace/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Application failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting ecotrace",
		zap.String("environment", cfg.Server.Environment),
		zap.String("storage", cfg.Database.Driver),
		zap.String("cache", cfg.Cache.Provider),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, logger, m)
	if err != nil {
		return err
	}
	defer closeStore()

	cacheInstance, err := cache.NewCache(&cache.Config{
		Provider:        cfg.Cache.Provider,
		TTL:             cfg.Cache.LeaderboardTTL,
		CleanupInterval: 5 * time.Minute,
		RedisURL:        cfg.Cache.RedisURL,
		PoolSize:        cfg.Cache.PoolSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}

	serviceCollection, err := services.NewServiceCollection(store, cacheInstance, cfg, m, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTExpiry)
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	responseConfig := response.DefaultConfig()
	responseConfig.MaskInternalErrors = cfg.IsProduction()
	responseConfig.PrettyJSON = !cfg.IsProduction()

	handler := router.SetupRouter(router.Dependencies{
		Services:        serviceCollection,
		Tokens:          tokens,
		ResponseBuilder: response.NewBuilder(responseConfig, logger, m),
		Gatherer:        registry,
		CORSOrigin:      cfg.Server.CORSOrigin,
		Logger:          logger,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down application...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("Server shutdown completed")
	}

	if err := serviceCollection.Shutdown(shutdownCtx); err != nil {
		logger.Error("Service shutdown failed", zap.Error(err))
	}

	logger.Info("Application shutdown completed")
	return nil
}

// openStore connects the configured storage backend and returns a closer
// for it.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (repositories.Store, func(), error) {
	switch cfg.Database.Driver {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on restart")
		return memory.NewStore(), func() {}, nil

	case config.StoragePostgres:
		db, err := database.Connect(ctx, &cfg.Database, logger, m)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if cfg.Database.RunMigrations {
			if err := db.Migrate(); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		health := db.Health(ctx)
		if health.Status != database.StatusHealthy {
			db.Close()
			return nil, nil, fmt.Errorf("database is not healthy: %s", health.Error)
		}
		logger.Info("Database health check passed",
			zap.String("status", health.Status),
			zap.Duration("response_time", health.ResponseTime),
		)

		closer := func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close database connections", zap.Error(err))
			}
		}
		return repositories.NewPostgresStore(db, logger), closer, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Database.Driver)
	}
}
