// file: internal/services/activity_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"ecotrace/internal/cache"
	"ecotrace/internal/emission"
	"ecotrace/internal/metrics"
	"ecotrace/internal/models"
	"ecotrace/internal/repositories"
	"ecotrace/internal/validation"

	"go.uber.org/zap"
)

// activityService implements ActivityService
type activityService struct {
	store   repositories.Store
	cache   cache.Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewActivityService creates an activity service. cache and m may be nil.
func NewActivityService(store repositories.Store, c cache.Cache, m *metrics.Metrics, logger *zap.Logger) ActivityService {
	return &activityService{
		store:   store,
		cache:   c,
		metrics: m,
		logger:  logger,
	}
}

// LogActivity writes the activity, its emission and, when the emission is
// below the Eco Warrior threshold, a badge. All rows commit together or not
// at all.
func (s *activityService) LogActivity(ctx context.Context, req *LogActivityRequest) (*LogActivityResult, error) {
	if req == nil {
		return nil, NewValidationError("request is required", nil)
	}

	if math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0) {
		return nil, NewValidationError("quantity must be a finite number", nil)
	}

	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid activity", err)
	}
	// the type is stored as sent, but whitespace alone is not a type
	if strings.TrimSpace(req.ActivityType) == "" {
		return nil, NewValidationError("activity type is required", nil)
	}

	calc := emission.Calculate(req.ActivityType, req.Quantity)
	result := &LogActivityResult{RecognizedType: calc.Recognized}

	err := s.store.WithTransaction(ctx, func(repos *repositories.Collection) error {
		activity := &models.Activity{
			UserID:       req.UserID,
			ActivityType: req.ActivityType,
			Quantity:     req.Quantity,
		}
		if err := repos.Activities.Create(ctx, activity); err != nil {
			if errors.Is(err, repositories.ErrMissingReference) {
				return NewNotFoundError("user not found")
			}
			return fmt.Errorf("failed to create activity: %w", err)
		}

		em := &models.Emission{
			ActivityID: activity.ID,
			EmissionKg: calc.Value,
		}
		if err := repos.Emissions.Create(ctx, em); err != nil {
			return fmt.Errorf("failed to create emission: %w", err)
		}

		result.Activity = activity
		result.Emission = em

		if calc.Value < models.EcoWarriorThresholdKg {
			badge := &models.Badge{
				UserID:    req.UserID,
				BadgeName: models.BadgeEcoWarrior,
			}
			if err := repos.Badges.Create(ctx, badge); err != nil {
				return fmt.Errorf("failed to create badge: %w", err)
			}
			result.Badge = badge
			result.BadgeAwarded = true
		}
		return nil
	})
	if err != nil {
		var serviceErr *ServiceError
		if errors.As(err, &serviceErr) {
			return nil, serviceErr
		}
		s.logger.Error("Failed to log activity",
			zap.Int64("user_id", req.UserID),
			zap.String("activity_type", req.ActivityType),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to log activity", err)
	}

	invalidateLeaderboard(ctx, s.cache, s.logger)

	badgeName := ""
	if result.Badge != nil {
		badgeName = result.Badge.BadgeName
	}
	s.metrics.ObserveActivity(metricsLabel(req.ActivityType, calc.Recognized), calc.Recognized, calc.Value, badgeName)

	s.logger.Info("Activity logged",
		zap.Int64("user_id", req.UserID),
		zap.Int64("activity_id", result.Activity.ID),
		zap.String("activity_type", req.ActivityType),
		zap.Float64("emission_kg", calc.Value),
		zap.Bool("recognized", calc.Recognized),
		zap.Bool("badge_awarded", result.BadgeAwarded),
	)

	return result, nil
}

// invalidateLeaderboard drops the cached ranking. Failures only log; the
// entry expires on its own.
func invalidateLeaderboard(ctx context.Context, c cache.Cache, logger *zap.Logger) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, LeaderboardCacheKey); err != nil {
		logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}
}

// metricsLabel keeps free-text activity types out of metric labels.
func metricsLabel(activityType string, recognized bool) string {
	if !recognized {
		return "other"
	}
	return activityType
}

// ParseQuantity parses a quantity submitted as text. Empty, non-numeric,
// negative and non-finite input is a ValidationError.
func ParseQuantity(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, NewValidationError("quantity is required", nil)
	}

	q, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, NewValidationError("quantity must be a number", err)
	}
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, NewValidationError("quantity must be a finite number", nil)
	}
	if q < 0 {
		return 0, NewValidationError("quantity cannot be negative", nil)
	}
	if q == 0 {
		// "-0" parses to negative zero
		return 0, nil
	}
	return q, nil
}
