package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abiturient/internal/app/auth"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/abiturient/internal/pkg/auth"
	"github.com/yigit/abiturient/internal/pkg/session"
)

type guardFixture struct {
	router   *gin.Engine
	jwt      *pkgAuth.JWTService
	sessions *session.Store
}

func newGuardFixture(t *testing.T) *guardFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := session.Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	jwt := pkgAuth.NewJWTService(pkgAuth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "abiturient"})
	m := NewAuthMiddleware(jwt, store)

	r := gin.New()
	r.Use(ErrorHandler())
	admin := r.Group("/admin", m.Authenticate(), m.RequireRole(models.RoleAdmin))
	admin.GET("/ping", func(c *gin.Context) {
		p, _ := auth.PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID, "role": p.Role})
	})
	r.GET("/whoami", m.Optional(), func(c *gin.Context) {
		p, ok := auth.PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok, "email": p.Email})
	})

	return &guardFixture{router: r, jwt: jwt, sessions: store}
}

func (f *guardFixture) login(t *testing.T, role models.Role) (string, *session.Session) {
	t.Helper()
	user := &models.User{ID: uuid.New(), Role: role, Name: "Тест", Email: strings.ToLower(string(role)) + "@example.com"}
	sess, err := f.sessions.Create(context.Background(), user, time.Hour)
	require.NoError(t, err)
	token, _, err := f.jwt.GenerateToken(user, sess.ID)
	require.NoError(t, err)
	return token, sess
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGuard(t *testing.T) {
	f := newGuardFixture(t)
	adminToken, _ := f.login(t, models.RoleAdmin)
	studentToken, _ := f.login(t, models.RoleStudent)
	revokedToken, revoked := f.login(t, models.RoleAdmin)
	require.NoError(t, f.sessions.Delete(context.Background(), revoked.ID))

	tests := []struct {
		name     string
		header   string
		cookie   string
		wantCode int
		wantErr  dto.ErrorCode
	}{
		{name: "no credentials", wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeUnauthorized},
		{name: "garbage token", header: "Bearer nope", wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeInvalidToken},
		{name: "revoked session", header: "Bearer " + revokedToken, wantCode: http.StatusUnauthorized, wantErr: dto.ErrorCodeTokenRevoked},
		{name: "wrong role", header: "Bearer " + studentToken, wantCode: http.StatusForbidden, wantErr: dto.ErrorCodeForbidden},
		{name: "admin header", header: "Bearer " + adminToken, wantCode: http.StatusOK},
		{name: "admin cookie", cookie: adminToken, wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				body := decodeError(t, w)
				assert.False(t, body.Success)
				assert.Equal(t, tt.wantErr, body.Error.Code)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	f := newGuardFixture(t)
	token, _ := f.login(t, models.RoleParent)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false,"email":""}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.JSONEq(t, `{"authenticated":true,"email":"parent@example.com"}`, w.Body.String())
}

func TestHandleAPIError(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "not found", err: apperrors.NewResourceNotFoundError("Institution not found"), wantCode: 404, wantMsg: "Institution not found"},
		{name: "plain not found", err: fmt.Errorf("lookup: %w", apperrors.ErrResourceNotFound), wantCode: 404, wantMsg: "Resource not found"},
		{name: "forbidden", err: apperrors.NewForbiddenError("Access denied"), wantCode: 403, wantMsg: "Access denied"},
		{name: "self delete", err: apperrors.ErrSelfDelete, wantCode: 400, wantMsg: "Cannot delete yourself"},
		{name: "validation", err: apperrors.NewValidationError("minScore", "minScore cannot be null"), wantCode: 400, wantMsg: "minScore cannot be null"},
		{name: "duplicate email", err: apperrors.ErrEmailAlreadyExists, wantCode: 409, wantMsg: "User with this email already exists"},
		{name: "unauthenticated", err: apperrors.ErrUnauthorized, wantCode: 401, wantMsg: "Authentication required"},
		{name: "bad credentials", err: apperrors.ErrInvalidCredentials, wantCode: 401, wantMsg: "Invalid email or password"},
		{name: "internal", err: errors.New("connection reset"), wantCode: 500, wantMsg: "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.True(t, c.IsAborted())
			body := decodeError(t, w)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
			assert.NotContains(t, w.Body.String(), "connection reset")
			assert.Empty(t, body.Error.DebugInfo)
		})
	}
}

func TestHandleAPIErrorDebugInfo(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		err       error
		wantDebug string
	}{
		{name: "debug internal", mode: gin.DebugMode, err: errors.New("connection reset"), wantDebug: "connection reset"},
		{name: "test internal", mode: gin.TestMode, err: fmt.Errorf("list users: %w", errors.New("timeout")), wantDebug: "list users: timeout"},
		{name: "release internal", mode: gin.ReleaseMode, err: errors.New("connection reset")},
		{name: "debug not found", mode: gin.DebugMode, err: apperrors.NewResourceNotFoundError("User not found")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(tt.mode)
			t.Cleanup(func() { gin.SetMode(gin.TestMode) })

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantDebug, decodeError(t, w).Error.DebugInfo)
		})
	}
}

type bindTarget struct {
	Name          string    `json:"name" binding:"required"`
	InstitutionID uuid.UUID `json:"institutionId" binding:"required"`
}

func TestBindJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		body      string
		wantErr   error
		wantField string
	}{
		{name: "valid", body: `{"name":"x","institutionId":"` + uuid.NewString() + `"}`},
		{name: "missing name", body: `{"institutionId":"` + uuid.NewString() + `"}`, wantErr: apperrors.ErrValidationFailed, wantField: "name"},
		{name: "missing institution", body: `{"name":"x"}`, wantErr: apperrors.ErrValidationFailed, wantField: "institutionId"},
		{name: "wrong type", body: `{"name":5}`, wantErr: apperrors.ErrValidationFailed, wantField: "name"},
		{name: "empty body", body: ``, wantErr: apperrors.ErrBadRequest},
		{name: "broken json", body: `{"name":`, wantErr: apperrors.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var target bindTarget
			err := BindJSON(c, &target)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantField != "" {
				var ce *apperrors.CustomError
				require.ErrorAs(t, err, &ce)
				assert.Equal(t, tt.wantField, ce.Details["field"])
			}
		})
	}
}

func TestRequestLoggerSetsID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(requestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Body.String())

	keep := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, keep)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, keep, w.Header().Get(requestIDHeader))
}
