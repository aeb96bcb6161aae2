package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/session"
)

// Services defined in this package:
// - UserService, InstitutionService, ProgramService, ReportService: admin CRUD
// - AuthService: registration, login and session lifecycle
// - AnalyticsService: admin dashboard aggregates
// - DashboardService: student and parent dashboards, saved institutions

// detailLimit is how many related records an item view embeds.
const detailLimit = 5

// The store interfaces below are satisfied by the pgx repositories.

type UserStore interface {
	List(ctx context.Context, q dto.ListQuery) ([]models.User, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetCredentials(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, id uuid.UUID, set map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type InstitutionStore interface {
	List(ctx context.Context, q dto.ListQuery) ([]models.Institution, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Institution, error)
	RecentPrograms(ctx context.Context, id uuid.UUID, limit uint64) ([]models.ProgramSummary, error)
	Create(ctx context.Context, inst *models.Institution) error
	Update(ctx context.Context, id uuid.UUID, set map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProgramStore interface {
	List(ctx context.Context, q dto.ListQuery) ([]models.Program, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Program, error)
	Create(ctx context.Context, p *models.Program) error
	Update(ctx context.Context, id uuid.UUID, set map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ReportStore interface {
	List(ctx context.Context, q dto.ListQuery) ([]models.Report, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Create(ctx context.Context, r *models.Report) error
	Update(ctx context.Context, id uuid.UUID, set map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StudentRecordStore reads the per-student records shown on user details
// and dashboards. A limit of 0 returns every row.
type StudentRecordStore interface {
	ExamResults(ctx context.Context, userID uuid.UUID, limit uint64) ([]models.ExamResult, error)
	Achievements(ctx context.Context, userID uuid.UUID, limit uint64) ([]models.Achievement, error)
	Reports(ctx context.Context, userID uuid.UUID, limit uint64) ([]models.ReportSummary, error)
}

type SavedInstitutionStore interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.SavedInstitution, error)
	Save(ctx context.Context, userID, institutionID uuid.UUID) error
	Remove(ctx context.Context, userID, institutionID uuid.UUID) error
}

type ParentLinkStore interface {
	StudentOf(ctx context.Context, parentID uuid.UUID) (*models.UserRef, error)
}

// SessionStore is the part of the bbolt session store the services use.
type SessionStore interface {
	Create(ctx context.Context, user *models.User, ttl time.Duration) (*session.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// notFound replaces a bare not-found error with "<entity> not found". Errors
// that already carry a message, such as a missing parent row, pass through.
func notFound(err error, entity string) error {
	if err == nil {
		return nil
	}
	var ce *apperrors.CustomError
	if errors.Is(err, apperrors.ErrResourceNotFound) && !errors.As(err, &ce) {
		return apperrors.NewResourceNotFoundError(entity + " not found")
	}
	return err
}

// orEmpty keeps list fields serialised as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
