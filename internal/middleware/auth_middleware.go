package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/auth"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/abiturient/internal/pkg/auth"
	"github.com/yigit/abiturient/internal/pkg/session"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "session"

// SessionResolver looks up live sessions.
type SessionResolver interface {
	Get(ctx context.Context, id uuid.UUID) (*session.Session, error)
}

// AuthMiddleware resolves the caller and guards routes by role.
type AuthMiddleware struct {
	jwtService *pkgAuth.JWTService
	sessions   SessionResolver
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(jwtService *pkgAuth.JWTService, sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService, sessions: sessions}
}

// tokenFrom prefers the Authorization header and falls back to the cookie.
func tokenFrom(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		token, err := pkgAuth.ExtractBearerToken(header)
		if err == nil {
			return strings.Trim(token, "\"'")
		}
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

func (m *AuthMiddleware) resolve(c *gin.Context) (auth.Principal, error) {
	token := tokenFrom(c)
	if token == "" {
		return auth.Principal{}, apperrors.ErrUnauthorized
	}

	claims, err := m.jwtService.ValidateToken(token)
	if err != nil {
		return auth.Principal{}, err
	}
	sid, err := claims.SessionID()
	if err != nil {
		return auth.Principal{}, apperrors.ErrTokenInvalid
	}

	sess, err := m.sessions.Get(c.Request.Context(), sid)
	if err != nil {
		return auth.Principal{}, err
	}
	if sess.UserID != claims.UserID {
		return auth.Principal{}, apperrors.ErrTokenInvalid
	}

	return auth.Principal{
		ID:        sess.UserID,
		Role:      sess.Role,
		Name:      sess.Name,
		Email:     sess.Email,
		SessionID: sess.ID,
	}, nil
}

// Authenticate rejects requests without a live session with 401.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := m.resolve(c)
		if err != nil {
			HandleAPIError(c, err)
			return
		}
		auth.SetPrincipal(c, p)
		c.Next()
	}
}

// Optional installs the principal when the request carries a live session and
// lets anonymous requests through.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, err := m.resolve(c); err == nil {
			auth.SetPrincipal(c, p)
		}
		c.Next()
	}
}

// RequireRole must run after Authenticate. Callers holding none of roles get 403.
func (m *AuthMiddleware) RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := auth.PrincipalFrom(c)
		if !ok {
			HandleAPIError(c, apperrors.ErrUnauthorized)
			return
		}
		if !p.HasRole(roles...) {
			HandleAPIError(c, apperrors.NewForbiddenError("Access denied"))
			return
		}
		c.Next()
	}
}
