package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
)

// InstitutionService defines the interface for institution operations
type InstitutionService interface {
	List(ctx context.Context, q dto.ListQuery) ([]models.Institution, int64, error)
	Create(ctx context.Context, req *dto.CreateInstitutionRequest) (*models.Institution, error)
	Get(ctx context.Context, id uuid.UUID) (*models.InstitutionDetail, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateInstitutionRequest) (*models.Institution, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type institutionServiceImpl struct {
	store InstitutionStore
}

// NewInstitutionService creates a new institution service
func NewInstitutionService(store InstitutionStore) InstitutionService {
	return &institutionServiceImpl{store: store}
}

func (s *institutionServiceImpl) List(ctx context.Context, q dto.ListQuery) ([]models.Institution, int64, error) {
	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return orEmpty(items), total, nil
}

func (s *institutionServiceImpl) Create(ctx context.Context, req *dto.CreateInstitutionRequest) (*models.Institution, error) {
	inst := &models.Institution{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		Direction:   req.Direction,
		Website:     req.Website,
		Logo:        req.Logo,
	}
	if req.MinScore != nil {
		inst.MinScore = int(*req.MinScore)
	}
	if err := s.store.Create(ctx, inst); err != nil {
		return nil, err
	}
	// A new institution has no programs or bookmarks, so the zero counts are
	// already correct.
	return inst, nil
}

func (s *institutionServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.InstitutionDetail, error) {
	inst, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Institution")
	}
	programs, err := s.store.RecentPrograms(ctx, id, detailLimit)
	if err != nil {
		return nil, err
	}
	return &models.InstitutionDetail{Institution: *inst, Programs: orEmpty(programs)}, nil
}

// institutionChanges maps the keys present in req to column values.
func institutionChanges(req *dto.UpdateInstitutionRequest) map[string]interface{} {
	set := make(map[string]interface{})
	if req.Name.Set {
		set["name"] = req.Name.Value
	}
	if req.Description.Set {
		set["description"] = req.Description.Value
	}
	if req.Type.Set {
		set["type"] = req.Type.Value
	}
	if req.Direction.Set {
		set["direction"] = req.Direction.Value
	}
	if req.MinScore.Set {
		set["min_score"] = int(req.MinScore.Value)
	}
	if req.Website.Set {
		set["website"] = req.Website.Ptr()
	}
	if req.Logo.Set {
		set["logo"] = req.Logo.Ptr()
	}
	return set
}

func (s *institutionServiceImpl) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateInstitutionRequest) (*models.Institution, error) {
	if err := s.store.Update(ctx, id, institutionChanges(req)); err != nil {
		return nil, notFound(err, "Institution")
	}
	inst, err := s.store.GetByID(ctx, id)
	return inst, notFound(err, "Institution")
}

func (s *institutionServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.store.Delete(ctx, id), "Institution")
}
