package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/auth"
	"github.com/yigit/abiturient/internal/pkg/logger"
)

// LoginResult is a signed token bound to a freshly stored session.
type LoginResult struct {
	Response  dto.AuthResponse
	Token     string
	ExpiresAt time.Time
}

// AuthService handles registration and the session lifecycle.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	jwt      *auth.JWTService
	hash     func(string) (string, error)
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, sessions SessionStore, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		jwt:      jwtService,
		hash:     auth.HashPassword,
	}
}

// Register creates a STUDENT or PARENT account.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (uuid.UUID, error) {
	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if role == models.RoleAdmin {
		return uuid.Nil, apperrors.NewValidationError("role", "role must be one of STUDENT, PARENT")
	}

	hashed, err := s.hash(req.Password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		Email:    req.Email,
		Password: hashed,
		Name:     req.Name,
		Role:     role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return uuid.Nil, err
	}

	logger.Info().Str("userId", u.ID.String()).Str("role", string(role)).Msg("User registered")
	return u.ID, nil
}

// Login verifies credentials, stores a session and signs a token for it.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetCredentials(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(u.Password, req.Password) {
		logger.Warn().Str("userId", u.ID.String()).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, u, s.jwt.TTL())
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.jwt.GenerateToken(u, sess.ID)
	if err != nil {
		if delErr := s.sessions.Delete(ctx, sess.ID); delErr != nil {
			logger.Error().Err(delErr).Msg("Failed to drop session after signing error")
		}
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Response: dto.AuthResponse{
			Token: dto.TokenResponse{
				AccessToken: token,
				TokenType:   "Bearer",
				ExpiresIn:   int64(s.jwt.TTL().Seconds()),
			},
			User: dto.SessionUser{ID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email},
		},
	}, nil
}

// Logout revokes one session. Revoking an unknown session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Delete(ctx, sessionID)
}
