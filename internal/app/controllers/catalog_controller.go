package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/app/services"
	"github.com/yigit/abiturient/internal/middleware"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/helpers"
)

// CatalogController serves the public institution directory.
type CatalogController struct {
	institutionService services.InstitutionService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(institutionService services.InstitutionService) *CatalogController {
	return &CatalogController{institutionService: institutionService}
}

// ListInstitutions lists institutions
// @Summary List institutions
// @Description Public listing with the same paging, search and type filter as the admin listing
// @Tags catalog
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param search query string false "Case-insensitive match on name, description and direction"
// @Param type query string false "Exact institution type"
// @Success 200 {object} dto.ListResponse[models.Institution]
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /institutions [get]
func (c *CatalogController) ListInstitutions(ctx *gin.Context) {
	q := helpers.ParseListQuery(ctx, []string{"type"})

	items, total, err := c.institutionService.List(ctx.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.ListResponse[models.Institution]{
		Items:      items,
		Pagination: helpers.NewPagination(total, q.Page, q.Limit),
	})
}

// GetInstitution returns one institution with its latest programs
// @Summary Get institution
// @Tags catalog
// @Produce json
// @Param id path string true "Institution ID" Format(uuid)
// @Success 200 {object} models.InstitutionDetail
// @Failure 404 {object} dto.ErrorResponse "Institution not found"
// @Router /institutions/{id} [get]
func (c *CatalogController) GetInstitution(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewResourceNotFoundError("Institution not found"))
		return
	}

	inst, err := c.institutionService.Get(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, inst)
}
