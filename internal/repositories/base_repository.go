package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Postgres error codes we translate.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// querier is satisfied by *database.Manager and *database.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// BaseRepository provides the shared query handle and error translation.
type BaseRepository struct {
	db     querier
	logger *zap.Logger
}

// NewBaseRepository creates a base repository over db.
func NewBaseRepository(db querier, logger *zap.Logger) *BaseRepository {
	return &BaseRepository{
		db:     db,
		logger: logger,
	}
}

// IsNotFound checks if error is a "not found" error
func (r *BaseRepository) IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// translate maps driver errors onto the package sentinels.
func (r *BaseRepository) translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if r.IsNotFound(err) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, pqErr.Constraint)
		case pqForeignKeyViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrMissingReference, pqErr.Constraint)
		case pqCheckViolation:
			return fmt.Errorf("%s: %w (%s)", op, ErrCheckViolation, pqErr.Constraint)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// GetLogger returns the repository logger
func (r *BaseRepository) GetLogger() *zap.Logger {
	return r.logger
}
