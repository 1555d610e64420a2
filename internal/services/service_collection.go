// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"time"

	"ecotrace/internal/cache"
	"ecotrace/internal/config"
	"ecotrace/internal/metrics"
	"ecotrace/internal/repositories"

	"go.uber.org/zap"
)

// ServiceCollection holds all services with their shared dependencies
type ServiceCollection struct {
	UserService        UserService
	ActivityService    ActivityService
	AggregationService AggregationService

	Store   repositories.Store
	Cache   cache.Cache
	Metrics *metrics.Metrics
	Logger  *zap.Logger
	Config  *config.Config

	startTime time.Time
}

// ServiceHealth represents the health status of the service collection
type ServiceHealth struct {
	Status       string                   `json:"status"`
	Timestamp    time.Time                `json:"timestamp"`
	Uptime       string                   `json:"uptime"`
	Dependencies map[string]ServiceStatus `json:"dependencies"`
	Issues       []string                 `json:"issues,omitempty"`
}

// ServiceStatus represents the status of an individual dependency
type ServiceStatus struct {
	Name         string        `json:"name"`
	Status       string        `json:"status"` // healthy, unhealthy
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
}

// NewServiceCollection wires every service onto store. c and m may be nil.
func NewServiceCollection(
	store repositories.Store,
	c cache.Cache,
	cfg *config.Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sc := &ServiceCollection{
		UserService:        NewUserService(store.Repos().Users, c, cfg.Auth.BCryptCost, logger.Named("users")),
		ActivityService:    NewActivityService(store, c, m, logger.Named("activities")),
		AggregationService: NewAggregationService(store, c, cfg.Cache.LeaderboardTTL, logger.Named("aggregation")),
		Store:              store,
		Cache:              c,
		Metrics:            m,
		Logger:             logger,
		Config:             cfg,
		startTime:          time.Now(),
	}

	logger.Info("Service collection initialized",
		zap.String("storage", cfg.Database.Driver),
		zap.Bool("cache_enabled", c != nil),
	)
	return sc, nil
}

// HealthCheck pings the store and the cache. A failing store makes the
// collection unhealthy; a failing cache only degrades it.
func (sc *ServiceCollection) HealthCheck(ctx context.Context) *ServiceHealth {
	health := &ServiceHealth{
		Status:       "healthy",
		Timestamp:    time.Now(),
		Uptime:       time.Since(sc.startTime).Round(time.Second).String(),
		Dependencies: make(map[string]ServiceStatus),
	}

	storeStatus := checkDependency(ctx, "database", sc.Store.Ping)
	health.Dependencies["database"] = storeStatus
	if storeStatus.Status != "healthy" {
		health.Status = "unhealthy"
		health.Issues = append(health.Issues, fmt.Sprintf("Database: %s", storeStatus.Error))
	}

	if sc.Cache != nil {
		cacheStatus := checkDependency(ctx, "cache", sc.Cache.Health)
		health.Dependencies["cache"] = cacheStatus
		if cacheStatus.Status != "healthy" {
			if health.Status == "healthy" {
				health.Status = "degraded"
			}
			health.Issues = append(health.Issues, fmt.Sprintf("Cache: %s", cacheStatus.Error))
		}
	}

	return health
}

// Shutdown releases the cache connection.
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")
	if sc.Cache != nil {
		if err := sc.Cache.Close(); err != nil {
			return fmt.Errorf("cache close: %w", err)
		}
	}
	return nil
}

func checkDependency(ctx context.Context, name string, check func(context.Context) error) ServiceStatus {
	start := time.Now()
	status := ServiceStatus{Name: name, Status: "healthy"}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := check(checkCtx); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	}
	status.ResponseTime = time.Since(start)
	return status
}
