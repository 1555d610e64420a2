package repositories

import (
	"context"
	"fmt"

	"ecotrace/internal/models"

	"go.uber.org/zap"
)

type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a postgres-backed badge repository.
func NewBadgeRepository(db querier, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

func (r *badgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	query := `
		INSERT INTO badges (user_id, badge_name)
		VALUES ($1, $2)
		RETURNING id, earned_on`

	err := r.db.QueryRowContext(ctx, query, badge.UserID, badge.BadgeName).
		Scan(&badge.ID, &badge.EarnedOn)
	if err != nil {
		return r.translate("create badge", err)
	}
	return nil
}

func (r *badgeRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Badge, error) {
	query := `
		SELECT id, user_id, badge_name, earned_on
		FROM badges
		WHERE user_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, r.translate("list badges", err)
	}
	defer rows.Close()

	var badges []*models.Badge
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.UserID, &b.BadgeName, &b.EarnedOn); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, &b)
	}
	return badges, rows.Err()
}

func (r *badgeRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM badges WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, r.translate("count badges", err)
	}
	return count, nil
}
