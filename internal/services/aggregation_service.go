// file: internal/services/aggregation_service.go
package services

import (
	"context"
	"time"

	"ecotrace/internal/cache"
	"ecotrace/internal/emission"
	"ecotrace/internal/models"
	"ecotrace/internal/repositories"

	"go.uber.org/zap"
)

// aggregationService implements AggregationService
type aggregationService struct {
	store          repositories.Store
	cache          cache.Cache
	leaderboardTTL time.Duration
	logger         *zap.Logger
}

// NewAggregationService creates an aggregation service. With a nil cache
// every leaderboard request reads the store.
func NewAggregationService(store repositories.Store, c cache.Cache, leaderboardTTL time.Duration, logger *zap.Logger) AggregationService {
	return &aggregationService{
		store:          store,
		cache:          c,
		leaderboardTTL: leaderboardTTL,
		logger:         logger,
	}
}

// ===============================
// DASHBOARD
// ===============================

// GetDashboard summarises one user's activities in creation order.
func (s *aggregationService) GetDashboard(ctx context.Context, userID int64) (*models.Dashboard, error) {
	repos := s.store.Repos()

	if _, err := repos.Users.GetByID(ctx, userID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to get user", err)
	}

	entries, err := repos.Emissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to list emissions", err)
	}

	total, err := repos.Emissions.SumByUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to sum emissions", err)
	}

	badges, err := repos.Badges.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to list badges", err)
	}

	dashboard := &models.Dashboard{
		UserID:         userID,
		ActivityLabels: make([]string, 0, len(entries)),
		EmissionValues: make([]float64, 0, len(entries)),
		TotalEmissions: emission.Round2(total),
		Badges:         make([]models.Badge, 0, len(badges)),
	}
	for _, e := range entries {
		dashboard.ActivityLabels = append(dashboard.ActivityLabels, e.ActivityType)
		value := 0.0
		if e.EmissionKg != nil {
			value = *e.EmissionKg
		}
		dashboard.EmissionValues = append(dashboard.EmissionValues, value)
	}
	for _, b := range badges {
		dashboard.Badges = append(dashboard.Badges, *b)
	}

	return dashboard, nil
}

// ===============================
// LEADERBOARD
// ===============================

// GetLeaderboardRow aggregates a single user's standing without a rank.
func (s *aggregationService) GetLeaderboardRow(ctx context.Context, userID int64) (*models.LeaderboardRow, error) {
	repos := s.store.Repos()

	user, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to get user", err)
	}

	total, err := repos.Emissions.SumByUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to sum emissions", err)
	}

	count, err := repos.Badges.CountByUser(ctx, userID)
	if err != nil {
		return nil, NewInternalError("failed to count badges", err)
	}

	return &models.LeaderboardRow{
		UserID:        user.ID,
		Username:      user.Username,
		TotalEmission: emission.Round2(total),
		BadgeCount:    count,
	}, nil
}

// GetLeaderboard ranks every user by total emission, lowest first.
func (s *aggregationService) GetLeaderboard(ctx context.Context) ([]models.LeaderboardRow, error) {
	if s.cache != nil {
		var cached []models.LeaderboardRow
		found, err := cache.GetJSON(ctx, s.cache, LeaderboardCacheKey, &cached)
		if err != nil {
			s.logger.Warn("Leaderboard cache read failed", zap.Error(err))
		} else if found {
			return cached, nil
		}
	}

	rows, err := s.store.LeaderboardRows(ctx)
	if err != nil {
		return nil, NewInternalError("failed to load leaderboard", err)
	}
	for i := range rows {
		rows[i].TotalEmission = emission.Round2(rows[i].TotalEmission)
	}

	ranked := RankUsers(rows)

	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, LeaderboardCacheKey, ranked, s.leaderboardTTL); err != nil {
			s.logger.Warn("Leaderboard cache write failed", zap.Error(err))
		}
	}

	return ranked, nil
}
