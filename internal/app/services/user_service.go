package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/auth"
	"github.com/yigit/abiturient/internal/pkg/logger"
)

// UserService defines the interface for admin user operations
type UserService interface {
	List(ctx context.Context, q dto.ListQuery) ([]models.User, int64, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.UserDetail, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userServiceImpl struct {
	store    UserStore
	records  StudentRecordStore
	sessions SessionStore
	hash     func(string) (string, error)
}

// NewUserService creates a new user service. Deleting a user, or changing any
// field a session carries (name, email, role) or its password, revokes its
// open sessions.
func NewUserService(store UserStore, records StudentRecordStore, sessions SessionStore) UserService {
	return &userServiceImpl{
		store:    store,
		records:  records,
		sessions: sessions,
		hash:     auth.HashPassword,
	}
}

func (s *userServiceImpl) List(ctx context.Context, q dto.ListQuery) ([]models.User, int64, error) {
	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return orEmpty(items), total, nil
}

func (s *userServiceImpl) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	hashed, err := s.hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		Email:    req.Email,
		Password: hashed,
		Name:     req.Name,
		Role:     req.Role,
		Avatar:   req.Avatar,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userServiceImpl) Get(ctx context.Context, id uuid.UUID) (*models.UserDetail, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User")
	}

	reports, err := s.records.Reports(ctx, id, detailLimit)
	if err != nil {
		return nil, err
	}
	achievements, err := s.records.Achievements(ctx, id, detailLimit)
	if err != nil {
		return nil, err
	}
	exams, err := s.records.ExamResults(ctx, id, detailLimit)
	if err != nil {
		return nil, err
	}

	return &models.UserDetail{
		User:         *u,
		Reports:      orEmpty(reports),
		Achievements: orEmpty(achievements),
		ExamResults:  orEmpty(exams),
	}, nil
}

func (s *userServiceImpl) userChanges(req *dto.UpdateUserRequest) (map[string]interface{}, error) {
	set := make(map[string]interface{})
	if req.Name.Set {
		set["name"] = req.Name.Value
	}
	if req.Email.Set {
		set["email"] = req.Email.Value
	}
	if req.Password.Set {
		hashed, err := s.hash(req.Password.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		set["password"] = hashed
	}
	if req.Role.Set {
		set["role"] = req.Role.Value
	}
	if req.Avatar.Set {
		set["avatar"] = req.Avatar.Ptr()
	}
	return set, nil
}

func (s *userServiceImpl) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	set, err := s.userChanges(req)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, id, set); err != nil {
		return nil, notFound(err, "User")
	}
	if sessionStale(req) {
		s.revoke(ctx, id)
	}

	u, err := s.store.GetByID(ctx, id)
	return u, notFound(err, "User")
}

func (s *userServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return notFound(err, "User")
	}
	s.revoke(ctx, id)
	return nil
}

// sessionStale reports whether req changes the password or anything copied
// into a session at login.
func sessionStale(req *dto.UpdateUserRequest) bool {
	return req.Name.Set || req.Email.Set || req.Role.Set || req.Password.Set
}

// revoke drops the sessions of id. The database change has already been
// committed, so a failure here is logged rather than returned.
func (s *userServiceImpl) revoke(ctx context.Context, id uuid.UUID) {
	lgr := logger.WithField("userId", id.String())
	n, err := s.sessions.DeleteUser(ctx, id)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to revoke user sessions")
		return
	}
	if n > 0 {
		lgr.Info().Int("sessions", n).Msg("Revoked user sessions")
	}
}
