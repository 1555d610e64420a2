// file: internal/handlers/api/v1/activities/activities_controller.go
package activities

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ecotrace/internal/contextutils"
	"ecotrace/internal/emission"
	"ecotrace/internal/response"
	"ecotrace/internal/services"

	"go.uber.org/zap"
)

// ActivitiesController handles activity logging
type ActivitiesController struct {
	activities      services.ActivityService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewActivitiesController creates a new activities controller
func NewActivitiesController(
	activities services.ActivityService,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *ActivitiesController {
	return &ActivitiesController{
		activities:      activities,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// LogActivityRequest is the body of POST /api/v1/activities. Quantity may
// be sent as a JSON number or as a numeric string.
type LogActivityRequest struct {
	ActivityType string          `json:"activity_type"`
	Quantity     json.RawMessage `json:"quantity"`
}

// LogActivity handles POST /api/v1/activities
func (c *ActivitiesController) LogActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req LogActivityRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	quantity, err := services.ParseQuantity(rawQuantity(req.Quantity))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	result, err := c.activities.LogActivity(ctx, &services.LogActivityRequest{
		UserID:       contextutils.GetUserID(r.Context()),
		ActivityType: req.ActivityType,
		Quantity:     quantity,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	if !result.RecognizedType {
		contextutils.GetLogger(r.Context(), c.logger).Warn("Unrecognized activity type logged with zero emission",
			zap.String("activity_type", result.Activity.ActivityType),
		)
	}

	c.responseBuilder.WriteCreated(w, r, result)
}

// EmissionFactors handles GET /api/v1/emission-factors
func (c *ActivitiesController) EmissionFactors(w http.ResponseWriter, r *http.Request) {
	c.responseBuilder.WriteSuccess(w, r, emission.Factors())
}

// rawQuantity unwraps a JSON string and passes numbers through as text.
func rawQuantity(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return text
}
