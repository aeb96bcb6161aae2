// Package resource serves the admin CRUD surface of every entity through one
// generic handler configured per resource.
package resource

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/auth"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/middleware"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/helpers"
	"github.com/yigit/abiturient/internal/pkg/logger"
)

// Service is the CRUD contract of one resource. T is the listed and updated
// record, D the detailed record returned by Get, C and U the create and
// update payloads.
type Service[T, D, C, U any] interface {
	List(ctx context.Context, q dto.ListQuery) ([]T, int64, error)
	Create(ctx context.Context, req *C) (*T, error)
	Get(ctx context.Context, id uuid.UUID) (*D, error)
	Update(ctx context.Context, id uuid.UUID, req *U) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Validator is implemented by payloads with rules that binding tags cannot
// express, such as rejecting null on a non-nullable column.
type Validator interface {
	Validate() error
}

// Options configures a Handler.
type Options struct {
	// Name is the path segment, e.g. "institutions".
	Name string
	// Entity is the singular display name used in messages, e.g. "Institution".
	Entity string
	// Filters are the exact-match query parameters the listing accepts.
	Filters []string
	// BeforeDelete may veto a delete requested by the caller.
	BeforeDelete func(caller auth.Principal, id uuid.UUID) error
}

// Handler exposes a Service as list, create, get, update and delete routes.
type Handler[T, D, C, U any] struct {
	svc  Service[T, D, C, U]
	opts Options
}

// NewHandler creates a Handler serving svc under opts.Name
func NewHandler[T, D, C, U any](svc Service[T, D, C, U], opts Options) *Handler[T, D, C, U] {
	return &Handler[T, D, C, U]{svc: svc, opts: opts}
}

// Register mounts the routes under rg/<Name>.
func (h *Handler[T, D, C, U]) Register(rg *gin.RouterGroup) {
	g := rg.Group("/" + h.opts.Name)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler[T, D, C, U]) notFound() error {
	return apperrors.NewResourceNotFoundError(h.opts.Entity + " not found")
}

// id parses the path id. An id that is not a UUID cannot address any row, so
// it is reported as not found.
func (h *Handler[T, D, C, U]) id(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, h.notFound()
	}
	return id, nil
}

func bind[P any](c *gin.Context) (*P, error) {
	req := new(P)
	if err := middleware.BindJSON(c, req); err != nil {
		return nil, err
	}
	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// List handles GET /<Name>: one page of records with the pagination block.
// Search and the declared filters are read from the query string.
func (h *Handler[T, D, C, U]) List(c *gin.Context) {
	q := helpers.ParseListQuery(c, h.opts.Filters)

	items, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}

	c.JSON(http.StatusOK, dto.ListResponse[T]{
		Items:      items,
		Pagination: helpers.NewPagination(total, q.Page, q.Limit),
	})
}

// Create handles POST /<Name> and answers 201 with the created record
func (h *Handler[T, D, C, U]) Create(c *gin.Context) {
	req, err := bind[C](c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	logger.Info().Str("resource", h.opts.Name).Msg("Resource created")
	c.JSON(http.StatusCreated, created)
}

// Get handles GET /<Name>/:id
func (h *Handler[T, D, C, U]) Get(c *gin.Context) {
	id, err := h.id(c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Update handles PUT /<Name>/:id. Only the fields present in the body change.
func (h *Handler[T, D, C, U]) Update(c *gin.Context) {
	id, err := h.id(c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	req, err := bind[U](c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /<Name>/:id after BeforeDelete, when set, allows it
func (h *Handler[T, D, C, U]) Delete(c *gin.Context) {
	id, err := h.id(c)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	if h.opts.BeforeDelete != nil {
		caller, err := auth.MustPrincipal(c)
		if err != nil {
			middleware.HandleAPIError(c, err)
			return
		}
		if err := h.opts.BeforeDelete(caller, id); err != nil {
			middleware.HandleAPIError(c, err)
			return
		}
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	logger.Info().Str("resource", h.opts.Name).Str("id", id.String()).Msg("Resource deleted")
	c.JSON(http.StatusOK, dto.MessageResponse{Message: h.opts.Entity + " deleted successfully"})
}

// PreventSelfDelete is a BeforeDelete hook for the users resource.
func PreventSelfDelete(caller auth.Principal, id uuid.UUID) error {
	if caller.ID == id {
		return apperrors.ErrSelfDelete
	}
	return nil
}
