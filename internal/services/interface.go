// file: internal/services/interface.go
package services

import (
	"context"

	"ecotrace/internal/models"
)

// ===============================
// CORE SERVICE INTERFACES
// ===============================

// UserService manages accounts and credentials.
type UserService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	// Authenticate returns the same AuthenticationError for an unknown email
	// and for a wrong password.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// ActivityService records activities together with their emission and any
// badge they earn.
type ActivityService interface {
	LogActivity(ctx context.Context, req *LogActivityRequest) (*LogActivityResult, error)
}

// AggregationService builds read-side views over logged activities.
type AggregationService interface {
	GetDashboard(ctx context.Context, userID int64) (*models.Dashboard, error)
	GetLeaderboardRow(ctx context.Context, userID int64) (*models.LeaderboardRow, error)
	GetLeaderboard(ctx context.Context) ([]models.LeaderboardRow, error)
}
