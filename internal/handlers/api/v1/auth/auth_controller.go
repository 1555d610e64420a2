// file: internal/handlers/api/v1/auth/auth_controller.go
package auth

import (
	"context"
	"net/http"
	"time"

	"ecotrace/internal/contextutils"
	"ecotrace/internal/models"
	"ecotrace/internal/response"
	"ecotrace/internal/services"

	"go.uber.org/zap"
)

// TokenIssuer is satisfied by *auth.TokenManager.
type TokenIssuer interface {
	Issue(userID int64) (string, time.Time, error)
}

// AuthController handles registration and login
type AuthController struct {
	users           services.UserService
	tokens          TokenIssuer
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewAuthController creates a new authentication controller
func NewAuthController(
	users services.UserService,
	tokens TokenIssuer,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AuthController {
	return &AuthController{
		users:           users,
		tokens:          tokens,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// LoginRequest is the body of POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// ===============================
// AUTHENTICATION ENDPOINTS
// ===============================

// Register handles user registration - POST /api/v1/auth/register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req services.RegisterRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	user, err := c.users.Register(ctx, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, user)
}

// Login handles user authentication - POST /api/v1/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logger := contextutils.GetLogger(r.Context(), c.logger)

	var req LoginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	user, err := c.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	token, expiresAt, err := c.tokens.Issue(user.ID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewInternalError("failed to issue token", err))
		return
	}

	logger.Info("User logged in", zap.Int64("user_id", user.ID))

	c.responseBuilder.WriteSuccess(w, r, &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	})
}
