// file: internal/repositories/interfaces.go
package repositories

import (
	"context"
	"errors"

	"ecotrace/internal/models"
)

// Sentinel errors returned (wrapped) by every implementation.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrMissingReference means a foreign key points at a row that does not exist.
	ErrMissingReference = errors.New("referenced record does not exist")
	// ErrCheckViolation means a row failed a CHECK constraint.
	ErrCheckViolation = errors.New("check constraint violated")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ===============================
// REPOSITORY INTERFACES
// ===============================

// UserRepository stores accounts.
type UserRepository interface {
	// Create inserts the user and fills ID and CreatedAt. A taken username
	// or email yields ErrDuplicate.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// List returns every user in id order.
	List(ctx context.Context) ([]*models.User, error)
}

// ActivityRepository stores logged activities.
type ActivityRepository interface {
	// Create inserts the activity and fills ID, Date and CreatedAt. An
	// unknown user yields ErrMissingReference.
	Create(ctx context.Context, activity *models.Activity) error
	// ListByUser returns the user's activities in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]*models.Activity, error)
}

// EmissionRepository stores computed emissions.
type EmissionRepository interface {
	// Create inserts the emission and fills ID and CalculatedAt. A second
	// emission for the same activity yields ErrDuplicate.
	Create(ctx context.Context, emission *models.Emission) error
	GetByActivityID(ctx context.Context, activityID int64) (*models.Emission, error)
	// ListByUser returns one entry per activity of the user, in insertion
	// order, with a nil EmissionKg where no emission exists.
	ListByUser(ctx context.Context, userID int64) ([]models.ActivityEmission, error)
	// SumByUser is the unrounded total of the user's emissions, 0 if none.
	SumByUser(ctx context.Context, userID int64) (float64, error)
}

// BadgeRepository stores earned badges.
type BadgeRepository interface {
	Create(ctx context.Context, badge *models.Badge) error
	ListByUser(ctx context.Context, userID int64) ([]*models.Badge, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// Store is the persistence boundary used by the services.
type Store interface {
	// Repos returns repositories that run outside any transaction.
	Repos() *Collection
	// WithTransaction runs fn against transaction-bound repositories. The
	// transaction commits when fn returns nil and rolls back otherwise,
	// including on panic.
	WithTransaction(ctx context.Context, fn func(repos *Collection) error) error
	// LeaderboardRows returns every user with the unrounded sum of their
	// emissions and their badge count, in user id order.
	LeaderboardRows(ctx context.Context) ([]models.LeaderboardRow, error)
	Ping(ctx context.Context) error
}
