package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/abiturient/internal/app/services"
	"github.com/yigit/abiturient/internal/middleware"
)

type AnalyticsController struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsController creates a new AnalyticsController
func NewAnalyticsController(analyticsService *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{analyticsService: analyticsService}
}

// GetAnalytics returns the admin dashboard aggregates
// @Summary Admin analytics
// @Description Totals, counts created within the period, users by role, institutions by type, top institutions, latest user activity and monthly stats for the last 12 months
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param period query int false "Recent window in days" default(30)
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/analytics [get]
func (c *AnalyticsController) GetAnalytics(ctx *gin.Context) {
	period, err := strconv.Atoi(ctx.DefaultQuery("period", strconv.Itoa(services.DefaultAnalyticsPeriod)))
	if err != nil {
		period = services.DefaultAnalyticsPeriod
	}

	resp, err := c.analyticsService.Overview(ctx.Request.Context(), period)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
