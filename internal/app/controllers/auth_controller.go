// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/abiturient/internal/app/auth"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/app/services"
	"github.com/yigit/abiturient/internal/middleware"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService  *services.AuthService
	cookieSecure bool
	logger       zerolog.Logger
}

// NewAuthController creates a new AuthController. cookieSecure marks the
// session cookie Secure, which production deployments behind TLS want.
func NewAuthController(authService *services.AuthService, cookieSecure bool, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:  authService,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates a STUDENT (default) or PARENT account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterResponse} "User registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		middleware.HandleAPIError(ctx, err)
		return
	}

	id, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.RegisterResponse{
		Message: "User registered successfully",
		UserID:  id,
	}))
}

// Login authenticates a user and opens a session
// @Summary Login
// @Description Verifies credentials, stores a session and returns its token. The token is also set as the session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Logged in"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Invalid email or password"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	res, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookie, res.Token, maxAge, "/", "", c.cookieSecure, true)

	c.logger.Info().Str("userId", res.Response.User.ID.String()).Msg("User logged in")
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(res.Response))
}

// Logout revokes the current session
// @Summary Logout
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse} "Logged out"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	p, err := auth.MustPrincipal(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), p.SessionID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.SessionCookie, "", -1, "/", "", c.cookieSecure, true)
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.MessageResponse{Message: "Logged out successfully"}))
}

// Session returns the caller of the request
// @Summary Current session
// @Description Returns the session user, or a null user for anonymous requests
// @Tags auth
// @Produce json
// @Success 200 {object} dto.SessionResponse
// @Router /auth/session [get]
func (c *AuthController) Session(ctx *gin.Context) {
	p, ok := auth.PrincipalFrom(ctx)
	if !ok {
		ctx.JSON(http.StatusOK, dto.SessionResponse{})
		return
	}
	ctx.JSON(http.StatusOK, dto.SessionResponse{User: &dto.SessionUser{
		ID:    p.ID,
		Role:  p.Role,
		Name:  p.Name,
		Email: p.Email,
	}})
}
