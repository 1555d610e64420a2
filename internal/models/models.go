// file: internal/models/models.go
package models

import (
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

// User is a registered account. Username and email are unique.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username" validate:"required,min=3,max=50"`
	Email        string    `json:"email" db:"email" validate:"required,email,max=100"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Activity is a single logged event, e.g. "drove 10 km".
type Activity struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"user_id" db:"user_id"`
	ActivityType string    `json:"activity_type" db:"activity_type"`
	Quantity     float64   `json:"quantity" db:"quantity"`
	Date         time.Time `json:"date" db:"activity_date"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Emission is the frozen kg CO2e value computed for one Activity.
type Emission struct {
	ID           int64     `json:"id" db:"id"`
	ActivityID   int64     `json:"activity_id" db:"activity_id"`
	EmissionKg   float64   `json:"emission_kg" db:"emission_kg"`
	CalculatedAt time.Time `json:"calculated_at" db:"calculated_at"`
}

// Badge is a reward earned by a user when logging a low-emission activity.
type Badge struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	BadgeName string    `json:"badge_name" db:"badge_name"`
	EarnedOn  time.Time `json:"earned_on" db:"earned_on"`
}

// BadgeEcoWarrior is awarded for any activity whose emission is under
// EcoWarriorThresholdKg.
const (
	BadgeEcoWarrior       = "Eco Warrior"
	EcoWarriorThresholdKg = 1.0
)

// ===============================
// AGGREGATES
// ===============================

// ActivityEmission pairs an activity with its emission value, if any.
type ActivityEmission struct {
	ActivityID   int64    `json:"activity_id" db:"activity_id"`
	ActivityType string   `json:"activity_type" db:"activity_type"`
	EmissionKg   *float64 `json:"emission_kg,omitempty" db:"emission_kg"`
}

// Dashboard is the per-user summary shown after login.
// ActivityLabels and EmissionValues are parallel and ordered by creation.
type Dashboard struct {
	UserID         int64     `json:"user_id"`
	ActivityLabels []string  `json:"activity_labels"`
	EmissionValues []float64 `json:"emission_values"`
	TotalEmissions float64   `json:"total_emissions"`
	Badges         []Badge   `json:"badges"`
}

// LeaderboardRow is one user's aggregated standing.
type LeaderboardRow struct {
	Rank          int     `json:"rank,omitempty"`
	UserID        int64   `json:"user_id"`
	Username      string  `json:"username"`
	TotalEmission float64 `json:"total_emission"`
	BadgeCount    int     `json:"badges"`
}
