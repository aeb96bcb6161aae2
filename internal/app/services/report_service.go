package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
)

// ReportService defines the interface for report operations
type ReportService interface {
	List(ctx context.Context, q dto.ListQuery) ([]models.Report, int64, error)
	Create(ctx context.Context, req *dto.CreateReportRequest) (*models.Report, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateReportRequest) (*models.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reportServiceImpl struct {
	store ReportStore
}

// NewReportService creates a new report service
func NewReportService(store ReportStore) ReportService {
	return &reportServiceImpl{store: store}
}

func (s *reportServiceImpl) List(ctx context.Context, q dto.ListQuery) ([]models.Report, int64, error) {
	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return orEmpty(items), total, nil
}

func (s *reportServiceImpl) Create(ctx context.Context, req *dto.CreateReportRequest) (*models.Report, error) {
	r := &models.Report{
		Title:           req.Title,
		Content:         req.Content,
		Recommendations: req.Recommendations,
		UserID:          req.UserID,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	return s.Get(ctx, r.ID)
}

func (s *reportServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Report")
	}
	return r, nil
}

func reportChanges(req *dto.UpdateReportRequest) map[string]interface{} {
	set := make(map[string]interface{})
	if req.Title.Set {
		set["title"] = req.Title.Value
	}
	if req.Content.Set {
		set["content"] = req.Content.Value
	}
	if req.Recommendations.Set {
		set["recommendations"] = req.Recommendations.Value
	}
	if req.UserID.Set {
		set["user_id"] = req.UserID.Value
	}
	return set
}

func (s *reportServiceImpl) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateReportRequest) (*models.Report, error) {
	if err := s.store.Update(ctx, id, reportChanges(req)); err != nil {
		return nil, notFound(err, "Report")
	}
	return s.Get(ctx, id)
}

func (s *reportServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.store.Delete(ctx, id), "Report")
}
