package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
)

// ProgramService defines the interface for program operations
type ProgramService interface {
	List(ctx context.Context, q dto.ListQuery) ([]models.Program, int64, error)
	Create(ctx context.Context, req *dto.CreateProgramRequest) (*models.Program, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Program, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateProgramRequest) (*models.Program, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type programServiceImpl struct {
	store ProgramStore
}

// NewProgramService creates a new program service
func NewProgramService(store ProgramStore) ProgramService {
	return &programServiceImpl{store: store}
}

func (s *programServiceImpl) List(ctx context.Context, q dto.ListQuery) ([]models.Program, int64, error) {
	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return orEmpty(items), total, nil
}

// Create inserts the program in one statement; the institution foreign key
// reports a missing parent as "Institution not found".
func (s *programServiceImpl) Create(ctx context.Context, req *dto.CreateProgramRequest) (*models.Program, error) {
	p := &models.Program{
		Name:          req.Name,
		Description:   req.Description,
		Faculty:       req.Faculty,
		Requirements:  req.Requirements,
		Exams:         orEmpty(req.Exams),
		InstitutionID: req.InstitutionID,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.reload(ctx, p.ID)
}

func (s *programServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	return s.reload(ctx, id)
}

func (s *programServiceImpl) reload(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Program")
	}
	p.Exams = orEmpty(p.Exams)
	return p, nil
}

func programChanges(req *dto.UpdateProgramRequest) map[string]interface{} {
	set := make(map[string]interface{})
	if req.Name.Set {
		set["name"] = req.Name.Value
	}
	if req.Description.Set {
		set["description"] = req.Description.Value
	}
	if req.Faculty.Set {
		set["faculty"] = req.Faculty.Value
	}
	if req.Requirements.Set {
		set["requirements"] = req.Requirements.Value
	}
	if req.Exams.Set {
		set["exams"] = orEmpty(req.Exams.Value)
	}
	if req.InstitutionID.Set {
		set["institution_id"] = req.InstitutionID.Value
	}
	return set
}

func (s *programServiceImpl) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateProgramRequest) (*models.Program, error) {
	if err := s.store.Update(ctx, id, programChanges(req)); err != nil {
		return nil, notFound(err, "Program")
	}
	return s.reload(ctx, id)
}

func (s *programServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.store.Delete(ctx, id), "Program")
}
