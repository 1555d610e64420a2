package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"ecotrace/internal/models"

	"go.uber.org/zap"
)

type emissionRepository struct {
	*BaseRepository
}

// NewEmissionRepository creates a postgres-backed emission repository.
func NewEmissionRepository(db querier, logger *zap.Logger) EmissionRepository {
	return &emissionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

func (r *emissionRepository) Create(ctx context.Context, emission *models.Emission) error {
	query := `
		INSERT INTO emissions (activity_id, emission_kg)
		VALUES ($1, $2)
		RETURNING id, calculated_at`

	err := r.db.QueryRowContext(ctx, query, emission.ActivityID, emission.EmissionKg).
		Scan(&emission.ID, &emission.CalculatedAt)
	if err != nil {
		return r.translate("create emission", err)
	}
	return nil
}

func (r *emissionRepository) GetByActivityID(ctx context.Context, activityID int64) (*models.Emission, error) {
	query := `
		SELECT id, activity_id, emission_kg, calculated_at
		FROM emissions
		WHERE activity_id = $1`

	var e models.Emission
	err := r.db.QueryRowContext(ctx, query, activityID).
		Scan(&e.ID, &e.ActivityID, &e.EmissionKg, &e.CalculatedAt)
	if err != nil {
		return nil, r.translate("get emission", err)
	}
	return &e, nil
}

func (r *emissionRepository) ListByUser(ctx context.Context, userID int64) ([]models.ActivityEmission, error) {
	query := `
		SELECT a.id, a.activity_type, e.emission_kg
		FROM activities a
		LEFT JOIN emissions e ON e.activity_id = a.id
		WHERE a.user_id = $1
		ORDER BY a.id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, r.translate("list emissions", err)
	}
	defer rows.Close()

	var out []models.ActivityEmission
	for rows.Next() {
		var (
			item models.ActivityEmission
			kg   sql.NullFloat64
		)
		if err := rows.Scan(&item.ActivityID, &item.ActivityType, &kg); err != nil {
			return nil, fmt.Errorf("failed to scan emission: %w", err)
		}
		if kg.Valid {
			v := kg.Float64
			item.EmissionKg = &v
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *emissionRepository) SumByUser(ctx context.Context, userID int64) (float64, error) {
	query := `
		SELECT COALESCE(SUM(e.emission_kg), 0)
		FROM emissions e
		JOIN activities a ON a.id = e.activity_id
		WHERE a.user_id = $1`

	var total float64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		return 0, r.translate("sum emissions", err)
	}
	return total, nil
}
