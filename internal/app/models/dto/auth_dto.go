package dto

import (
	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@ai-assistent.ru"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// RegisterRequest is the self-service sign-up payload. Admin accounts can
// only be created through the admin surface or the admin CLI.
type RegisterRequest struct {
	Name     string      `json:"name" binding:"required" example:"Анна Петрова"`
	Email    string      `json:"email" binding:"required,email" example:"anna@example.com"`
	Password string      `json:"password" binding:"required,min=6" example:"secret1"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=STUDENT PARENT" example:"STUDENT"`
}

type RegisterResponse struct {
	Message string    `json:"message" example:"User registered successfully"`
	UserID  uuid.UUID `json:"userId"`
}

// TokenResponse represents the signed session token
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn" example:"86400"`
}

// SessionUser is what the session resolver exposes about the caller.
type SessionUser struct {
	ID    uuid.UUID   `json:"id"`
	Role  models.Role `json:"role" example:"ADMIN"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
}

// SessionResponse has a nil User when there is no session.
type SessionResponse struct {
	User *SessionUser `json:"user"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  SessionUser   `json:"user"`
}
