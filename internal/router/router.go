package router

import (
	"net/http"

	"ecotrace/internal/auth"
	"ecotrace/internal/handlers/api/v1/activities"
	authhandlers "ecotrace/internal/handlers/api/v1/auth"
	"ecotrace/internal/handlers/api/v1/stats"
	"ecotrace/internal/handlers/api/v1/system"
	"ecotrace/internal/middleware"
	"ecotrace/internal/response"
	"ecotrace/internal/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies is everything the HTTP layer needs.
type Dependencies struct {
	Services        *services.ServiceCollection
	Tokens          *auth.TokenManager
	ResponseBuilder *response.Builder
	Gatherer        prometheus.Gatherer
	CORSOrigin      string
	Logger          *zap.Logger
}

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	rb := deps.ResponseBuilder
	sc := deps.Services

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rb.WriteError(w, req, services.NewNotFoundError("route not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rb.WriteJSON(w, req, rb.Error(req.Context(), &services.ServiceError{
			Type:       "METHOD_NOT_ALLOWED",
			Message:    "method not allowed",
			StatusCode: http.StatusMethodNotAllowed,
		}), http.StatusMethodNotAllowed)
	})

	r.Use(middleware.Logging(logger, sc.Metrics))

	// ===== OPERATIONAL =====
	systemController := system.NewSystemController(sc, rb)
	r.HandleFunc("/health", systemController.Health).Methods(http.MethodGet)
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// ===== API V1 =====
	api := r.PathPrefix("/api/v1").Subrouter()
	setupAPIv1Routes(api, deps)

	var handler http.Handler = r
	handler = middleware.RecoverPanic(logger, rb)(handler)
	handler = middleware.SecureHeaders(handler)
	handler = middleware.CORS(deps.CORSOrigin)(handler)
	handler = middleware.RequestID(logger)(handler)
	return handler
}

func setupAPIv1Routes(api *mux.Router, deps Dependencies) {
	sc := deps.Services
	rb := deps.ResponseBuilder
	logger := deps.Logger

	authController := authhandlers.NewAuthController(sc.UserService, deps.Tokens, logger, rb)
	activitiesController := activities.NewActivitiesController(sc.ActivityService, logger, rb)
	statsController := stats.NewStatsController(sc.AggregationService, logger, rb)

	// public
	api.HandleFunc("/auth/register", authController.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authController.Login).Methods(http.MethodPost)
	api.HandleFunc("/emission-factors", activitiesController.EmissionFactors).Methods(http.MethodGet)

	// authenticated
	authMiddleware := middleware.NewAuthMiddleware(deps.Tokens, rb, logger)
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware.RequireAuth())

	protected.HandleFunc("/activities", activitiesController.LogActivity).Methods(http.MethodPost)
	protected.HandleFunc("/dashboard", statsController.Dashboard).Methods(http.MethodGet)
	protected.HandleFunc("/leaderboard", statsController.Leaderboard).Methods(http.MethodGet)
}
