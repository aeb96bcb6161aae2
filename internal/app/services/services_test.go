package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/app/repositories"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/auth"
	"github.com/yigit/abiturient/internal/pkg/patch"
	"github.com/yigit/abiturient/internal/pkg/session"
)

func fakeHash(p string) (string, error) { return "hashed:" + p, nil }

type fakeUserStore struct {
	users   map[uuid.UUID]*models.User
	lastSet map[string]interface{}
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeUserStore) List(ctx context.Context, q dto.ListQuery) ([]models.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetCredentials(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserStore) Create(ctx context.Context, u *models.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	u.ID = uuid.New()
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) Update(ctx context.Context, id uuid.UUID, set map[string]interface{}) error {
	u, ok := f.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	f.lastSet = set
	if v, ok := set["name"].(string); ok {
		u.Name = v
	}
	if v, ok := set["role"].(models.Role); ok {
		u.Role = v
	}
	if v, ok := set["password"].(string); ok {
		u.Password = v
	}
	if v, ok := set["email"].(string); ok {
		u.Email = v
	}
	if v, ok := set["avatar"]; ok {
		u.Avatar, _ = v.(*string)
	}
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeRecords struct {
	limits []uint64
}

func (f *fakeRecords) ExamResults(ctx context.Context, userID uuid.UUID, limit uint64) ([]models.ExamResult, error) {
	f.limits = append(f.limits, limit)
	return []models.ExamResult{{Subject: "Математика", Score: 85}}, nil
}

func (f *fakeRecords) Achievements(ctx context.Context, userID uuid.UUID, limit uint64) ([]models.Achievement, error) {
	f.limits = append(f.limits, limit)
	return nil, nil
}

func (f *fakeRecords) Reports(ctx context.Context, userID uuid.UUID, limit uint64) ([]models.ReportSummary, error) {
	f.limits = append(f.limits, limit)
	return nil, nil
}

type fakeSessions struct {
	mu      sync.Mutex
	created []*session.Session
	deleted []uuid.UUID
	revoked []uuid.UUID
}

func (f *fakeSessions) Create(ctx context.Context, user *models.User, ttl time.Duration) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &session.Session{ID: uuid.New(), UserID: user.ID, Role: user.Role, ExpiresAt: time.Now().Add(ttl)}
	f.created = append(f.created, s)
	return s, nil
}

func (f *fakeSessions) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSessions) DeleteUser(ctx context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = append(f.revoked, userID)
	return 1, nil
}

func newTestUserService() (*userServiceImpl, *fakeUserStore, *fakeRecords, *fakeSessions) {
	store, records, sessions := newFakeUserStore(), &fakeRecords{}, &fakeSessions{}
	svc := NewUserService(store, records, sessions).(*userServiceImpl)
	svc.hash = fakeHash
	return svc, store, records, sessions
}

func TestNotFoundNamesEntity(t *testing.T) {
	err := notFound(repositories.ErrNotFound, "Institution")
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
	assert.Equal(t, "Institution not found", err.Error())

	parentMissing := apperrors.NewResourceNotFoundError("User not found")
	assert.Same(t, parentMissing, notFound(parentMissing, "Report"))

	other := errors.New("boom")
	assert.Same(t, other, notFound(other, "Report"))
	assert.NoError(t, notFound(nil, "Report"))
}

func TestInstitutionChangesArePresenceBased(t *testing.T) {
	req := &dto.UpdateInstitutionRequest{
		Name:     patch.Of(""),
		MinScore: patch.Of(patch.Int(0)),
		Website:  patch.Null[string](),
	}

	set := institutionChanges(req)
	require.Len(t, set, 3)
	assert.Equal(t, "", set["name"])
	assert.Equal(t, 0, set["min_score"])
	assert.Nil(t, set["website"])
	assert.NotContains(t, set, "description")
	assert.NotContains(t, set, "logo")
}

func TestProgramChangesKeepsExamsAsArray(t *testing.T) {
	instID := uuid.New()
	set := programChanges(&dto.UpdateProgramRequest{
		Exams:         patch.Of[[]string](nil),
		InstitutionID: patch.Of(instID),
	})
	assert.Equal(t, []string{}, set["exams"])
	assert.Equal(t, instID, set["institution_id"])
}

func TestReportChanges(t *testing.T) {
	set := reportChanges(&dto.UpdateReportRequest{Title: patch.Of("Итоги")})
	assert.Equal(t, map[string]interface{}{"title": "Итоги"}, set)
}

func TestUserServiceCreateHashesPassword(t *testing.T) {
	svc, store, _, _ := newTestUserService()
	ctx := context.Background()

	u, err := svc.Create(ctx, &dto.CreateUserRequest{Name: "Анна", Email: "anna@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, u.Role)
	assert.Equal(t, "hashed:secret1", store.users[u.ID].Password)

	_, err = svc.Create(ctx, &dto.CreateUserRequest{Name: "B", Email: "anna@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestUserServiceGetEmbedsRecentRecords(t *testing.T) {
	svc, _, records, _ := newTestUserService()
	ctx := context.Background()
	u, err := svc.Create(ctx, &dto.CreateUserRequest{Name: "Анна", Email: "anna@example.com", Password: "secret1"})
	require.NoError(t, err)

	detail, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, detail.ID)
	assert.Len(t, detail.ExamResults, 1)
	assert.NotNil(t, detail.Reports)
	assert.NotNil(t, detail.Achievements)
	assert.Equal(t, []uint64{detailLimit, detailLimit, detailLimit}, records.limits)

	_, err = svc.Get(ctx, uuid.New())
	assert.EqualError(t, err, "User not found")
}

func TestUserServiceUpdate(t *testing.T) {
	svc, store, _, sessions := newTestUserService()
	ctx := context.Background()
	u, err := svc.Create(ctx, &dto.CreateUserRequest{Name: "Анна", Email: "anna@example.com", Password: "secret1"})
	require.NoError(t, err)

	avatar := "https://cdn.example.com/a.png"
	got, err := svc.Update(ctx, u.ID, &dto.UpdateUserRequest{Avatar: patch.Of(avatar)})
	require.NoError(t, err)
	require.NotNil(t, got.Avatar)
	assert.Equal(t, avatar, *got.Avatar)
	assert.Empty(t, sessions.revoked, "avatar change keeps sessions")

	_, err = svc.Update(ctx, u.ID, &dto.UpdateUserRequest{
		Password: patch.Of("newpass"),
		Role:     patch.Of(models.RoleAdmin),
	})
	require.NoError(t, err)
	assert.Equal(t, "hashed:newpass", store.lastSet["password"])
	assert.Equal(t, []uuid.UUID{u.ID}, sessions.revoked)

	_, err = svc.Update(ctx, uuid.New(), &dto.UpdateUserRequest{})
	assert.EqualError(t, err, "User not found")
}

func TestUserServiceUpdateRevokesStaleSessions(t *testing.T) {
	tests := []struct {
		name       string
		req        dto.UpdateUserRequest
		wantRevoke bool
	}{
		{name: "name", req: dto.UpdateUserRequest{Name: patch.Of("Анна Петрова")}, wantRevoke: true},
		{name: "email", req: dto.UpdateUserRequest{Email: patch.Of("petrova@example.com")}, wantRevoke: true},
		{name: "role", req: dto.UpdateUserRequest{Role: patch.Of(models.RoleParent)}, wantRevoke: true},
		{name: "password", req: dto.UpdateUserRequest{Password: patch.Of("newpass")}, wantRevoke: true},
		{name: "avatar", req: dto.UpdateUserRequest{Avatar: patch.Null[string]()}, wantRevoke: false},
		{name: "empty", req: dto.UpdateUserRequest{}, wantRevoke: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, sessions := newTestUserService()
			ctx := context.Background()
			u, err := svc.Create(ctx, &dto.CreateUserRequest{Name: "Анна", Email: "anna@example.com", Password: "secret1"})
			require.NoError(t, err)

			_, err = svc.Update(ctx, u.ID, &tt.req)
			require.NoError(t, err)
			if tt.wantRevoke {
				assert.Equal(t, []uuid.UUID{u.ID}, sessions.revoked)
			} else {
				assert.Empty(t, sessions.revoked)
			}
		})
	}
}

func TestUserServiceDeleteRevokesSessions(t *testing.T) {
	svc, _, _, sessions := newTestUserService()
	ctx := context.Background()
	u, err := svc.Create(ctx, &dto.CreateUserRequest{Name: "Анна", Email: "anna@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.Equal(t, []uuid.UUID{u.ID}, sessions.revoked)

	err = svc.Delete(ctx, u.ID)
	assert.EqualError(t, err, "User not found")
	assert.Len(t, sessions.revoked, 1)
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserStore, *fakeSessions) {
	t.Helper()
	store, sessions := newFakeUserStore(), &fakeSessions{}
	jwtSvc := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "abiturient"})
	svc := NewAuthService(store, sessions, jwtSvc)
	return svc, store, sessions
}

func TestAuthServiceRegister(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	svc.hash = fakeHash
	ctx := context.Background()

	id, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Анна", Email: "anna@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, store.users[id].Role)

	id, err = svc.Register(ctx, &dto.RegisterRequest{Name: "Папа", Email: "dad@example.com", Password: "secret1", Role: models.RoleParent})
	require.NoError(t, err)
	assert.Equal(t, models.RoleParent, store.users[id].Role)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Name: "X", Email: "x@example.com", Password: "secret1", Role: models.RoleAdmin})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Name: "Дубль", Email: "anna@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestAuthServiceLoginAndLogout(t *testing.T) {
	svc, store, sessions := newTestAuthService(t)
	ctx := context.Background()

	hashed, err := auth.HashPassword("password123")
	require.NoError(t, err)
	u := &models.User{Email: "admin@ai-assistent.ru", Name: "Админ", Password: hashed, Role: models.RoleAdmin}
	require.NoError(t, store.Create(ctx, u))

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: u.Email, Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Empty(t, sessions.created)

	res, err := svc.Login(ctx, &dto.LoginRequest{Email: u.Email, Password: "password123"})
	require.NoError(t, err)
	require.Len(t, sessions.created, 1)
	assert.Equal(t, models.RoleAdmin, res.Response.User.Role)
	assert.Equal(t, "Bearer", res.Response.Token.TokenType)
	assert.Equal(t, int64(3600), res.Response.Token.ExpiresIn)

	claims, err := svc.jwt.ValidateToken(res.Token)
	require.NoError(t, err)
	sid, err := claims.SessionID()
	require.NoError(t, err)
	assert.Equal(t, sessions.created[0].ID, sid)

	require.NoError(t, svc.Logout(ctx, sid))
	assert.Equal(t, []uuid.UUID{sid}, sessions.deleted)
}

type fakeAnalytics struct {
	mu     sync.Mutex
	since  map[string][]time.Time
	failOn string
}

func (f *fakeAnalytics) Count(ctx context.Context, table string, since time.Time) (int64, error) {
	f.mu.Lock()
	f.since[table] = append(f.since[table], since)
	f.mu.Unlock()
	if table == f.failOn {
		return 0, errors.New("db down")
	}
	if since.IsZero() {
		return 100, nil
	}
	return 7, nil
}

func (f *fakeAnalytics) CountBy(ctx context.Context, table, column string) ([]repositories.GroupCount, error) {
	if table == repositories.TableUsers {
		return []repositories.GroupCount{{Key: "STUDENT", Count: 80}, {Key: "ADMIN", Count: 2}}, nil
	}
	return []repositories.GroupCount{{Key: "Университет", Count: 9}}, nil
}

func (f *fakeAnalytics) TopInstitutions(ctx context.Context, limit uint64) ([]dto.TopInstitution, error) {
	return nil, nil
}

func (f *fakeAnalytics) UserActivity(ctx context.Context, limit uint64) ([]dto.UserActivity, error) {
	return []dto.UserActivity{{Name: "Анна"}}, nil
}

func (f *fakeAnalytics) Monthly(ctx context.Context, table string, since time.Time) ([]dto.MonthCount, error) {
	return []dto.MonthCount{{Month: "2026-03", Count: 4}}, nil
}

func TestAnalyticsOverview(t *testing.T) {
	store := &fakeAnalytics{since: map[string][]time.Time{}}
	svc := NewAnalyticsService(store)
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	resp, err := svc.Overview(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, DefaultAnalyticsPeriod, resp.Period)
	assert.Equal(t, int64(100), resp.Overview.TotalUsers)
	assert.Equal(t, int64(7), resp.Overview.RecentReports)
	assert.Contains(t, store.since[repositories.TableUsers], now.AddDate(0, 0, -30))
	assert.Equal(t, []dto.RoleCount{{Role: models.RoleStudent, Count: 80}, {Role: models.RoleAdmin, Count: 2}}, resp.UsersByRole)
	assert.Equal(t, []dto.TypeCount{{Type: "Университет", Count: 9}}, resp.InstitutionsByType)
	assert.NotNil(t, resp.TopInstitutions)
	assert.Len(t, resp.UserActivity, 1)

	require.Len(t, resp.MonthlyStats.Users, monthlyWindow)
	assert.Equal(t, "2025-11", resp.MonthlyStats.Users[0].Month)
	assert.Equal(t, "2026-10", resp.MonthlyStats.Users[11].Month)
	assert.Equal(t, int64(4), resp.MonthlyStats.Reports[4].Count)
}

func TestAnalyticsOverviewPropagatesErrors(t *testing.T) {
	store := &fakeAnalytics{since: map[string][]time.Time{}, failOn: repositories.TablePrograms}
	_, err := NewAnalyticsService(store).Overview(context.Background(), 7)
	assert.EqualError(t, err, "db down")
}

func TestMonthsBackCrossesYear(t *testing.T) {
	got := monthsBack(time.Date(2026, 2, 28, 15, 0, 0, 0, time.UTC), 3)
	assert.Equal(t, time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), got)
}

type fakeSaved struct{}

func (fakeSaved) List(ctx context.Context, userID uuid.UUID) ([]models.SavedInstitution, error) {
	return nil, nil
}
func (fakeSaved) Save(ctx context.Context, userID, institutionID uuid.UUID) error { return nil }
func (fakeSaved) Remove(ctx context.Context, userID, institutionID uuid.UUID) error {
	return apperrors.NewResourceNotFoundError("Saved institution not found")
}

type fakeParents struct {
	student *models.UserRef
}

func (f fakeParents) StudentOf(ctx context.Context, parentID uuid.UUID) (*models.UserRef, error) {
	if f.student == nil {
		return nil, repositories.ErrNotFound
	}
	return f.student, nil
}

func TestDashboardStudent(t *testing.T) {
	records := &fakeRecords{}
	svc := NewDashboardService(records, fakeSaved{}, fakeParents{})

	dash, err := svc.Student(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, dash.ExamResults, 1)
	assert.NotNil(t, dash.SavedInstitutions)
	assert.Equal(t, []uint64{0, 0, dashboardReports}, records.limits)

	err = svc.RemoveInstitution(context.Background(), uuid.New(), uuid.New())
	assert.EqualError(t, err, "Saved institution not found")
}

func TestDashboardParent(t *testing.T) {
	dash, err := NewDashboardService(&fakeRecords{}, fakeSaved{}, fakeParents{}).Parent(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, dash.Student)
	assert.Empty(t, dash.ExamResults)
	assert.NotNil(t, dash.Reports)

	student := &models.UserRef{ID: uuid.New(), Name: "Анна"}
	dash, err = NewDashboardService(&fakeRecords{}, fakeSaved{}, fakeParents{student: student}).Parent(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, student, dash.Student)
	assert.Len(t, dash.ExamResults, 1)
}
