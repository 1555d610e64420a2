// file: internal/services/types.go
package services

import (
	"ecotrace/internal/models"
)

// LeaderboardCacheKey is where the ranked leaderboard is cached.
const LeaderboardCacheKey = "leaderboard:v1"

// ===============================
// REQUEST TYPES
// ===============================

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LogActivityRequest records one activity for UserID.
type LogActivityRequest struct {
	UserID       int64   `json:"-" validate:"required,gt=0"`
	ActivityType string  `json:"activity_type" validate:"required,max=50"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
}

// ===============================
// RESPONSE TYPES
// ===============================

// LogActivityResult is everything written by one LogActivity call.
type LogActivityResult struct {
	Activity       *models.Activity `json:"activity"`
	Emission       *models.Emission `json:"emission"`
	BadgeAwarded   bool             `json:"badge_awarded"`
	Badge          *models.Badge    `json:"badge,omitempty"`
	RecognizedType bool             `json:"recognized_type"`
}
