// file: internal/handlers/api/v1/stats/stats_controller.go
package stats

import (
	"context"
	"net/http"
	"time"

	"ecotrace/internal/contextutils"
	"ecotrace/internal/response"
	"ecotrace/internal/services"

	"go.uber.org/zap"
)

// StatsController serves the dashboard and the leaderboard
type StatsController struct {
	aggregation     services.AggregationService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewStatsController creates a new stats controller
func NewStatsController(
	aggregation services.AggregationService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *StatsController {
	return &StatsController{
		aggregation:     aggregation,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// Dashboard handles GET /api/v1/dashboard for the authenticated user
func (c *StatsController) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	dashboard, err := c.aggregation.GetDashboard(ctx, contextutils.GetUserID(r.Context()))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, dashboard)
}

// Leaderboard handles GET /api/v1/leaderboard
func (c *StatsController) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	rows, err := c.aggregation.GetLeaderboard(ctx)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteSuccess(w, r, rows)
}
