package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecotrace/internal/cache"
	"ecotrace/internal/config"
	"ecotrace/internal/metrics"
	"ecotrace/internal/models"
	"ecotrace/internal/repositories"
	"ecotrace/internal/repositories/memory"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	store   *memory.Store
	cache   cache.Cache
	metrics *metrics.Metrics
	sc      *ServiceCollection
}

func testConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: config.StorageMemory},
		Auth:     config.AuthConfig{BCryptCost: bcrypt.MinCost},
		Cache:    config.CacheConfig{Provider: "memory", LeaderboardTTL: time.Minute},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	c := cache.NewMemoryCache(&cache.Config{TTL: time.Minute}, zap.NewNop())
	m := metrics.New(prometheus.NewRegistry())

	sc, err := NewServiceCollection(store, c, testConfig(), m, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown(context.Background()) })

	return &testEnv{store: store, cache: c, metrics: m, sc: sc}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.sc.UserService.Register(context.Background(), &RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) logActivity(t *testing.T, userID int64, activityType string, qty float64) *LogActivityResult {
	t.Helper()
	res, err := e.sc.ActivityService.LogActivity(context.Background(), &LogActivityRequest{
		UserID:       userID,
		ActivityType: activityType,
		Quantity:     qty,
	})
	require.NoError(t, err)
	return res
}

// failingBadgeStore fails every badge insert made inside a transaction.
type failingBadgeStore struct {
	*memory.Store
}

func (s failingBadgeStore) WithTransaction(ctx context.Context, fn func(repos *repositories.Collection) error) error {
	return s.Store.WithTransaction(ctx, func(repos *repositories.Collection) error {
		wrapped := *repos
		wrapped.Badges = failingBadges{repos.Badges}
		return fn(&wrapped)
	})
}

type failingBadges struct {
	repositories.BadgeRepository
}

func (failingBadges) Create(ctx context.Context, badge *models.Badge) error {
	return errors.New("disk full")
}
