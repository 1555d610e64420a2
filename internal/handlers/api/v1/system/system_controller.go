// file: internal/handlers/api/v1/system/system_controller.go
package system

import (
	"context"
	"net/http"

	"ecotrace/internal/response"
	"ecotrace/internal/services"
)

// HealthChecker is satisfied by *services.ServiceCollection.
type HealthChecker interface {
	HealthCheck(ctx context.Context) *services.ServiceHealth
}

// SystemController serves operational endpoints
type SystemController struct {
	health          HealthChecker
	responseBuilder *response.Builder
}

// NewSystemController creates a new system controller
func NewSystemController(health HealthChecker, responseBuilder *response.Builder) *SystemController {
	return &SystemController{
		health:          health,
		responseBuilder: responseBuilder,
	}
}

// Health handles GET /health. An unhealthy store answers 503.
func (c *SystemController) Health(w http.ResponseWriter, r *http.Request) {
	health := c.health.HealthCheck(r.Context())

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	resp := c.responseBuilder.Success(r.Context(), health)
	resp.Success = status == http.StatusOK
	c.responseBuilder.WriteJSON(w, r, resp, status)
}
