package repositories

import (
	"context"
	"fmt"

	"ecotrace/internal/models"

	"go.uber.org/zap"
)

type activityRepository struct {
	*BaseRepository
}

// NewActivityRepository creates a postgres-backed activity repository.
func NewActivityRepository(db querier, logger *zap.Logger) ActivityRepository {
	return &activityRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	query := `
		INSERT INTO activities (user_id, activity_type, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, activity_date, created_at`

	err := r.db.QueryRowContext(ctx, query, activity.UserID, activity.ActivityType, activity.Quantity).
		Scan(&activity.ID, &activity.Date, &activity.CreatedAt)
	if err != nil {
		return r.translate("create activity", err)
	}
	return nil
}

func (r *activityRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Activity, error) {
	query := `
		SELECT id, user_id, activity_type, quantity, activity_date, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, r.translate("list activities", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.ActivityType, &a.Quantity, &a.Date, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, &a)
	}
	return activities, rows.Err()
}
