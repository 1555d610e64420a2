package repositories

import (
	"context"
	"fmt"

	"ecotrace/internal/database"
	"ecotrace/internal/models"

	"go.uber.org/zap"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore implements Store on top of a database.Manager.
type PostgresStore struct {
	db     *database.Manager
	logger *zap.Logger
	repos  *Collection
}

// NewPostgresStore creates the postgres-backed store.
func NewPostgresStore(db *database.Manager, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
		repos:  newCollection(db, logger),
	}
}

func newCollection(db querier, logger *zap.Logger) *Collection {
	return &Collection{
		Users:      NewUserRepository(db, logger),
		Activities: NewActivityRepository(db, logger),
		Emissions:  NewEmissionRepository(db, logger),
		Badges:     NewBadgeRepository(db, logger),
	}
}

func (s *PostgresStore) Repos() *Collection {
	return s.repos
}

// WithTransaction executes fn within a database transaction
func (s *PostgresStore) WithTransaction(ctx context.Context, fn func(repos *Collection) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newCollection(tx, s.logger)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to rollback transaction",
				zap.Error(rbErr),
				zap.NamedError("cause", err),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) LeaderboardRows(ctx context.Context) ([]models.LeaderboardRow, error) {
	query := `
		SELECT
			u.id,
			u.username,
			COALESCE((
				SELECT SUM(e.emission_kg)
				FROM emissions e
				JOIN activities a ON a.id = e.activity_id
				WHERE a.user_id = u.id
			), 0) AS total_emission,
			(SELECT COUNT(*) FROM badges b WHERE b.user_id = u.id) AS badge_count
		FROM users u
		ORDER BY u.id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("leaderboard rows: %w", err)
	}
	defer rows.Close()

	var out []models.LeaderboardRow
	for rows.Next() {
		var row models.LeaderboardRow
		if err := rows.Scan(&row.UserID, &row.Username, &row.TotalEmission, &row.BadgeCount); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
