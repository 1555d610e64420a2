// file: internal/services/user_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"ecotrace/internal/cache"
	"ecotrace/internal/models"
	"ecotrace/internal/repositories"
	"ecotrace/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// invalidCredentials is the only message a failed login ever returns.
const invalidCredentials = "invalid email or password"

// userService implements UserService
type userService struct {
	users      repositories.UserRepository
	cache      cache.Cache
	bcryptCost int
	logger     *zap.Logger
}

// NewUserService creates a user service hashing passwords at bcryptCost.
// c may be nil.
func NewUserService(users repositories.UserRepository, c cache.Cache, bcryptCost int, logger *zap.Logger) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		users:      users,
		cache:      c,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register validates the request, hashes the password and creates the user.
func (s *userService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if req == nil {
		return nil, NewValidationError("request is required", nil)
	}

	normalized := *req
	normalized.Username = strings.TrimSpace(req.Username)
	normalized.Email = normalizeEmail(req.Email)

	if err := validation.ValidateStruct(&normalized); err != nil {
		return nil, NewValidationError("invalid registration request", err)
	}

	if err := s.checkAvailability(ctx, &normalized); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(normalized.Password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, NewValidationError("password is too long", err)
		}
		return nil, NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		Username:     normalized.Username,
		Email:        normalized.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("username or email already registered", "ACCOUNT_TAKEN")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, NewInternalError("failed to create user", err)
	}

	// every user has a leaderboard row, even with no activities
	invalidateLeaderboard(ctx, s.cache, s.logger)

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return sanitizeUser(user), nil
}

// Authenticate verifies an email and password pair.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewAuthenticationError(invalidCredentials)
		}
		return nil, NewInternalError("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("Password mismatch", zap.Int64("user_id", user.ID))
		return nil, NewAuthenticationError(invalidCredentials)
	}

	return sanitizeUser(user), nil
}

// GetUser retrieves a user by id.
func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, NewValidationError("invalid user id", nil)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, NewNotFoundError("user not found")
		}
		return nil, NewInternalError("failed to get user", err)
	}
	return sanitizeUser(user), nil
}

// ===============================
// HELPERS
// ===============================

func (s *userService) checkAvailability(ctx context.Context, req *RegisterRequest) error {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return NewConflictError("email already registered", "EMAIL_TAKEN")
	} else if !repositories.IsNotFound(err) {
		return NewInternalError("failed to check email", err)
	}

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return NewConflictError("username already taken", "USERNAME_TAKEN")
	} else if !repositories.IsNotFound(err) {
		return NewInternalError("failed to check username", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// sanitizeUser returns a copy without the password hash.
func sanitizeUser(user *models.User) *models.User {
	out := *user
	out.PasswordHash = ""
	return &out
}
