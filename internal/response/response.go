package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ecotrace/internal/contextutils"
	"ecotrace/internal/metrics"
	"ecotrace/internal/services"
	"ecotrace/internal/validation"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ===============================
// RESPONSE CONFIGURATION
// ===============================

// Config holds configuration for the response system
type Config struct {
	PrettyJSON         bool `json:"pretty_json"`
	MaskInternalErrors bool `json:"mask_internal_errors"`
}

// DefaultConfig returns production-ready response configuration
func DefaultConfig() *Config {
	return &Config{
		PrettyJSON:         false,
		MaskInternalErrors: true,
	}
}

// internalErrorMessage replaces the message of any unexpected error.
const internalErrorMessage = "an internal error occurred"

// ===============================
// RESPONSE TYPES
// ===============================

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool         `json:"success"`
	Data      interface{}  `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
	Timestamp int64        `json:"timestamp"`
}

// ErrorDetail represents error information in API responses
type ErrorDetail struct {
	Type    string                  `json:"type"`
	Message string                  `json:"message"`
	Code    string                  `json:"code,omitempty"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder writes enveloped JSON responses
type Builder struct {
	config  *Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewBuilder creates a new response builder. m may be nil.
func NewBuilder(config *Config, logger *zap.Logger, m *metrics.Metrics) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Builder{
		config:  config,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Success creates a successful API response
func (b *Builder) Success(ctx context.Context, data interface{}) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		RequestID: contextutils.GetRequestID(ctx),
		Timestamp: b.now().Unix(),
	}
}

// Error creates an error response from err
func (b *Builder) Error(ctx context.Context, err error) *APIResponse {
	return &APIResponse{
		Success:   false,
		Error:     b.convertError(err),
		RequestID: contextutils.GetRequestID(ctx),
		Timestamp: b.now().Unix(),
	}
}

// ===============================
// HTTP RESPONSE WRITERS
// ===============================

// WriteJSON writes a JSON response with appropriate headers
func (b *Builder) WriteJSON(w http.ResponseWriter, r *http.Request, response *APIResponse, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	if b.config.PrettyJSON {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(response); err != nil {
		contextutils.GetLogger(r.Context(), b.logger).Error("Failed to encode JSON response", zap.Error(err))
	}
}

// WriteSuccess writes a 200 response
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, b.Success(r.Context(), data), http.StatusOK)
}

// WriteCreated writes a 201 response
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, b.Success(r.Context(), data), http.StatusCreated)
}

// WriteError writes an error response with the status mapped from err.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	resp := b.Error(r.Context(), err)
	status := StatusCode(err)

	logger := contextutils.GetLogger(r.Context(), b.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("error_type", resp.Error.Type), zap.Error(err))
	} else {
		logger.Debug("Request rejected", zap.String("error_type", resp.Error.Type), zap.Error(err))
	}
	b.metrics.ObserveError(RouteName(r), resp.Error.Type)

	b.WriteJSON(w, r, resp, status)
}

// ===============================
// UTILITY METHODS
// ===============================

// StatusCode maps an error onto an HTTP status. Anything that is not a
// ServiceError is a 500.
func StatusCode(err error) int {
	var serviceErr *services.ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.GetStatusCode()
	}
	return http.StatusInternalServerError
}

// RouteName is the matched route template, falling back to the raw path
// when the request did not go through the router.
func RouteName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

func (b *Builder) convertError(err error) *ErrorDetail {
	var serviceErr *services.ServiceError
	if !errors.As(err, &serviceErr) {
		serviceErr = services.NewInternalError(err.Error(), err)
	}

	detail := &ErrorDetail{
		Type:    serviceErr.Type,
		Message: serviceErr.Message,
		Code:    serviceErr.Code,
		Fields:  serviceErr.Fields,
	}
	if serviceErr.GetStatusCode() >= http.StatusInternalServerError && b.config.MaskInternalErrors {
		detail.Type = services.ErrTypeInternal
		detail.Message = internalErrorMessage
		detail.Code = ""
		detail.Fields = nil
	}
	return detail
}
