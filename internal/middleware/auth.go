// file: internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"ecotrace/internal/auth"
	"ecotrace/internal/contextutils"
	"ecotrace/internal/response"
	"ecotrace/internal/services"

	"go.uber.org/zap"
)

// TokenVerifier is satisfied by *auth.TokenManager.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware authenticates bearer tokens
type AuthMiddleware struct {
	verifier TokenVerifier
	builder  *response.Builder
	logger   *zap.Logger
}

// NewAuthMiddleware creates the bearer-token middleware.
func NewAuthMiddleware(verifier TokenVerifier, builder *response.Builder, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		builder:  builder,
		logger:   logger,
	}
}

// RequireAuth rejects requests without a valid bearer token with 401 and
// stores the token's user id in the context otherwise.
func (am *AuthMiddleware) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				am.builder.WriteError(w, r, services.NewAuthenticationError("missing bearer token"))
				return
			}

			claims, err := am.verifier.Verify(token)
			if err != nil {
				am.builder.WriteError(w, r, services.NewAuthenticationError("invalid or expired token"))
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				am.builder.WriteError(w, r, services.NewAuthenticationError("invalid or expired token"))
				return
			}

			ctx := contextutils.WithUserID(r.Context(), userID)
			requestLogger := contextutils.GetLogger(ctx, am.logger).With(zap.Int64("user_id", userID))
			ctx = contextutils.WithLogger(ctx, requestLogger)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
