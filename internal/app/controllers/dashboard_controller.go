package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/auth"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/app/services"
	"github.com/yigit/abiturient/internal/middleware"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
)

// DashboardController serves the student and parent dashboards. Every
// handler runs behind the guard, so the caller is always known.
type DashboardController struct {
	dashboardService *services.DashboardService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(dashboardService *services.DashboardService) *DashboardController {
	return &DashboardController{dashboardService: dashboardService}
}

// StudentDashboard returns the caller's records
// @Summary Student dashboard
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StudentDashboard}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /student/dashboard [get]
func (c *DashboardController) StudentDashboard(ctx *gin.Context) {
	p, err := auth.MustPrincipal(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	dash, err := c.dashboardService.Student(ctx.Request.Context(), p.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dash))
}

// ListSavedInstitutions
// @Summary Saved institutions
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.SavedInstitution}
// @Router /student/saved-institutions [get]
func (c *DashboardController) ListSavedInstitutions(ctx *gin.Context) {
	p, err := auth.MustPrincipal(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	saved, err := c.dashboardService.SavedInstitutions(ctx.Request.Context(), p.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(saved))
}

func institutionParam(ctx *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewResourceNotFoundError("Institution not found")
	}
	return id, nil
}

// SaveInstitution bookmarks an institution
// @Summary Save institution
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path string true "Institution ID" Format(uuid)
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /student/saved-institutions/{id} [post]
func (c *DashboardController) SaveInstitution(ctx *gin.Context) {
	p, err := auth.MustPrincipal(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, err := institutionParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.dashboardService.SaveInstitution(ctx.Request.Context(), p.ID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(dto.MessageResponse{Message: "Institution saved"}))
}

// RemoveSavedInstitution removes a bookmark
// @Summary Remove saved institution
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path string true "Institution ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 404 {object} dto.ErrorResponse "Saved institution not found"
// @Router /student/saved-institutions/{id} [delete]
func (c *DashboardController) RemoveSavedInstitution(ctx *gin.Context) {
	p, err := auth.MustPrincipal(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, err := institutionParam(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.dashboardService.RemoveInstitution(ctx.Request.Context(), p.ID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.MessageResponse{Message: "Institution removed"}))
}

// ParentDashboard returns the records of the linked student
// @Summary Parent dashboard
// @Tags parent
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ParentDashboard}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /parent/dashboard [get]
func (c *DashboardController) ParentDashboard(ctx *gin.Context) {
	p, err := auth.MustPrincipal(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	dash, err := c.dashboardService.Parent(ctx.Request.Context(), p.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dash))
}
