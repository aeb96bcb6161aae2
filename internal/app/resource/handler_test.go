package resource_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/app/repositories"
	"github.com/yigit/abiturient/internal/app/resource"
	"github.com/yigit/abiturient/internal/app/services"
	"github.com/yigit/abiturient/internal/middleware"
	pkgAuth "github.com/yigit/abiturient/internal/pkg/auth"
	"github.com/yigit/abiturient/internal/pkg/helpers"
	"github.com/yigit/abiturient/internal/pkg/session"
)

// memInstitutions is an in-memory services.InstitutionStore.
type memInstitutions struct {
	mu    sync.Mutex
	rows  map[uuid.UUID]*models.Institution
	clock time.Time
}

func newMemInstitutions() *memInstitutions {
	return &memInstitutions{
		rows:  map[uuid.UUID]*models.Institution{},
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memInstitutions) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memInstitutions) matches(inst *models.Institution, q dto.ListQuery) bool {
	if t := q.Filter("type"); t != "" && inst.Type != t {
		return false
	}
	if q.Search == "" {
		return true
	}
	s := strings.ToLower(q.Search)
	for _, field := range []string{inst.Name, inst.Description, inst.Direction} {
		if strings.Contains(strings.ToLower(field), s) {
			return true
		}
	}
	return false
}

func (m *memInstitutions) List(ctx context.Context, q dto.ListQuery) ([]models.Institution, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all []models.Institution
	for _, inst := range m.rows {
		if m.matches(inst, q) {
			all = append(all, *inst)
		}
	}
	slices.SortFunc(all, func(a, b models.Institution) int { return b.CreatedAt.Compare(a.CreatedAt) })

	total := int64(len(all))
	offset, limit := helpers.CalculateOffsetLimit(q.Page, q.Limit)
	start := int(min(offset, uint64(len(all))))
	end := min(start+limit, len(all))
	return all[start:end], total, nil
}

func (m *memInstitutions) GetByID(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *inst
	return &cp, nil
}

func (m *memInstitutions) RecentPrograms(ctx context.Context, id uuid.UUID, limit uint64) ([]models.ProgramSummary, error) {
	return nil, nil
}

func (m *memInstitutions) Create(ctx context.Context, inst *models.Institution) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst.ID = uuid.New()
	inst.CreatedAt = m.tick()
	inst.UpdatedAt = inst.CreatedAt
	cp := *inst
	m.rows[inst.ID] = &cp
	return nil
}

func (m *memInstitutions) Update(ctx context.Context, id uuid.UUID, set map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for col, v := range set {
		switch col {
		case "name":
			inst.Name = v.(string)
		case "description":
			inst.Description = v.(string)
		case "type":
			inst.Type = v.(string)
		case "direction":
			inst.Direction = v.(string)
		case "min_score":
			inst.MinScore = v.(int)
		case "website":
			inst.Website = v.(*string)
		case "logo":
			inst.Logo = v.(*string)
		default:
			return fmt.Errorf("unknown column %s", col)
		}
	}
	inst.UpdatedAt = m.tick()
	return nil
}

func (m *memInstitutions) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memInstitutions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// fakeUsers records deletes; only Delete is exercised.
type fakeUsers struct {
	deleted []uuid.UUID
}

func (f *fakeUsers) List(ctx context.Context, q dto.ListQuery) ([]models.User, int64, error) {
	return nil, 0, nil
}
func (f *fakeUsers) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	return &models.User{ID: uuid.New(), Name: req.Name, Email: req.Email, Role: req.Role}, nil
}
func (f *fakeUsers) Get(ctx context.Context, id uuid.UUID) (*models.UserDetail, error) {
	return &models.UserDetail{User: models.User{ID: id}}, nil
}
func (f *fakeUsers) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	return &models.User{ID: id}, nil
}
func (f *fakeUsers) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fixture struct {
	router       *gin.Engine
	institutions *memInstitutions
	programs     *memPrograms
	users        *fakeUsers
	jwt          *pkgAuth.JWTService
	sessions     *session.Store
	adminID      uuid.UUID
	adminToken   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := session.Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	jwt := pkgAuth.NewJWTService(pkgAuth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "abiturient"})
	guard := middleware.NewAuthMiddleware(jwt, store)

	f := &fixture{
		institutions: newMemInstitutions(),
		users:        &fakeUsers{},
		jwt:          jwt,
		sessions:     store,
	}
	f.programs = newMemPrograms(f.institutions)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	admin := r.Group("/api/admin", guard.Authenticate(), guard.RequireRole(models.RoleAdmin))
	resource.NewHandler[models.Institution, models.InstitutionDetail, dto.CreateInstitutionRequest, dto.UpdateInstitutionRequest](
		services.NewInstitutionService(f.institutions),
		resource.Options{Name: "institutions", Entity: "Institution", Filters: []string{"type"}},
	).Register(admin)
	resource.NewHandler[models.Program, models.Program, dto.CreateProgramRequest, dto.UpdateProgramRequest](
		services.NewProgramService(f.programs),
		resource.Options{Name: "programs", Entity: "Program", Filters: []string{"faculty", "institutionId"}},
	).Register(admin)
	resource.NewHandler[models.User, models.UserDetail, dto.CreateUserRequest, dto.UpdateUserRequest](
		f.users,
		resource.Options{Name: "users", Entity: "User", Filters: []string{"role"}, BeforeDelete: resource.PreventSelfDelete},
	).Register(admin)
	f.router = r

	f.adminID, f.adminToken = f.login(t, models.RoleAdmin)
	return f
}

func (f *fixture) login(t *testing.T, role models.Role) (uuid.UUID, string) {
	t.Helper()
	user := &models.User{ID: uuid.New(), Role: role, Name: "Тест", Email: "t@example.com"}
	sess, err := f.sessions.Create(context.Background(), user, time.Hour)
	require.NoError(t, err)
	token, _, err := f.jwt.GenerateToken(user, sess.ID)
	require.NoError(t, err)
	return user.ID, token
}

func (f *fixture) do(t *testing.T, token, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) admin(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	return f.do(t, f.adminToken, method, path, body)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (f *fixture) createInstitution(t *testing.T, name, typ string) models.Institution {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"description":"Описание","type":%q,"direction":"IT","minScore":200}`, name, typ)
	w := f.admin(t, http.MethodPost, "/api/admin/institutions", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Institution](t, w)
}

func TestInstitutionLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.admin(t, http.MethodPost, "/api/admin/institutions",
		`{"name":"Test U","description":"d","type":"Университет","direction":"IT","minScore":"250"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, float64(250), created["minScore"])
	assert.Equal(t, float64(0), created["_count"].(map[string]interface{})["programs"])
	id := created["id"].(string)

	w = f.admin(t, http.MethodGet, "/api/admin/institutions?search=Test", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ListResponse[models.Institution]](t, w)
	require.Len(t, list.Items, 1)
	assert.Equal(t, id, list.Items[0].ID.String())

	w = f.admin(t, http.MethodDelete, "/api/admin/institutions/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Institution deleted successfully"}`, w.Body.String())

	w = f.admin(t, http.MethodGet, "/api/admin/institutions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Institution not found", decode[dto.ErrorResponse](t, w).Error.Message)

	w = f.admin(t, http.MethodDelete, "/api/admin/institutions/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	f := newFixture(t)

	w := f.admin(t, http.MethodPost, "/api/admin/institutions",
		`{"name":"МФТИ","description":"Физтех","type":"Университет","direction":"Технические науки","minScore":290,"website":"https://mipt.ru"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Institution](t, w)

	w = f.admin(t, http.MethodGet, "/api/admin/institutions/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.InstitutionDetail](t, w)

	assert.Equal(t, "МФТИ", got.Name)
	assert.Equal(t, "Физтех", got.Description)
	assert.Equal(t, "Университет", got.Type)
	assert.Equal(t, "Технические науки", got.Direction)
	assert.Equal(t, 290, got.MinScore)
	require.NotNil(t, got.Website)
	assert.Equal(t, "https://mipt.ru", *got.Website)
	assert.NotNil(t, got.Programs)
}

func TestPartialUpdateIsPresenceBased(t *testing.T) {
	f := newFixture(t)
	inst := f.createInstitution(t, "СПбГУ", "Университет")
	path := "/api/admin/institutions/" + inst.ID.String()

	w := f.admin(t, http.MethodPut, path, `{"name":"","minScore":0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[models.Institution](t, w)
	assert.Equal(t, "", got.Name)
	assert.Equal(t, 0, got.MinScore)
	assert.Equal(t, inst.Description, got.Description)
	assert.Equal(t, inst.Type, got.Type)
	assert.Equal(t, inst.Direction, got.Direction)

	w = f.admin(t, http.MethodPut, path, `{"website":"https://spbu.ru"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, decode[models.Institution](t, w).Website)

	w = f.admin(t, http.MethodPut, path, `{"website":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[models.Institution](t, w).Website)

	w = f.admin(t, http.MethodPut, path, `{"description":null}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "description cannot be null", decode[dto.ErrorResponse](t, w).Error.Message)

	w = f.admin(t, http.MethodPut, "/api/admin/institutions/"+uuid.NewString(), `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 23; i++ {
		f.createInstitution(t, fmt.Sprintf("Колледж %02d", i), "Колледж")
	}

	tests := []struct {
		query     string
		wantItems int
		wantPage  int
		wantLimit int
		wantPages int
	}{
		{query: "", wantItems: 10, wantPage: 1, wantLimit: 10, wantPages: 3},
		{query: "?page=3&limit=10", wantItems: 3, wantPage: 3, wantLimit: 10, wantPages: 3},
		{query: "?page=4&limit=10", wantItems: 0, wantPage: 4, wantLimit: 10, wantPages: 3},
		{query: "?limit=1000", wantItems: 23, wantPage: 1, wantLimit: 1000, wantPages: 1},
		{query: "?page=abc&limit=-5", wantItems: 10, wantPage: 1, wantLimit: 10, wantPages: 3},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := f.admin(t, http.MethodGet, "/api/admin/institutions"+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			list := decode[dto.ListResponse[models.Institution]](t, w)

			assert.Len(t, list.Items, tt.wantItems)
			assert.LessOrEqual(t, len(list.Items), list.Pagination.Limit)
			assert.Equal(t, int64(23), list.Pagination.Total)
			assert.Equal(t, tt.wantPage, list.Pagination.Page)
			assert.Equal(t, tt.wantLimit, list.Pagination.Limit)
			assert.Equal(t, tt.wantPages, list.Pagination.Pages)
		})
	}

	w := f.admin(t, http.MethodGet, "/api/admin/institutions", "")
	list := decode[dto.ListResponse[models.Institution]](t, w)
	assert.Equal(t, "Колледж 22", list.Items[0].Name, "newest first")
}

func TestListSearchAndFilter(t *testing.T) {
	f := newFixture(t)
	f.createInstitution(t, "Московский университет", "Университет")
	f.createInstitution(t, "Медицинский колледж", "Колледж")
	f.createInstitution(t, "Политех", "Университет")

	w := f.admin(t, http.MethodGet, "/api/admin/institutions?search=%D0%9A%D0%9E%D0%9B%D0%9B%D0%95%D0%94%D0%96", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[dto.ListResponse[models.Institution]](t, w)
	require.Len(t, list.Items, 1)
	for _, item := range list.Items {
		text := strings.ToLower(item.Name + " " + item.Description + " " + item.Direction)
		assert.Contains(t, text, "колледж")
	}

	w = f.admin(t, http.MethodGet, "/api/admin/institutions?type=%D0%A3%D0%BD%D0%B8%D0%B2%D0%B5%D1%80%D1%81%D0%B8%D1%82%D0%B5%D1%82", "")
	list = decode[dto.ListResponse[models.Institution]](t, w)
	assert.Len(t, list.Items, 2)

	w = f.admin(t, http.MethodGet, "/api/admin/institutions?search=nothing-matches", "")
	list = decode[dto.ListResponse[models.Institution]](t, w)
	assert.NotNil(t, list.Items)
	assert.Empty(t, list.Items)
	assert.Equal(t, 0, list.Pagination.Pages)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "missing minScore", body: `{"name":"A","description":"d","type":"t","direction":"x"}`, wantField: "minScore"},
		{name: "missing name", body: `{"description":"d","type":"t","direction":"x","minScore":1}`, wantField: "name"},
		{name: "non numeric score", body: `{"name":"A","description":"d","type":"t","direction":"x","minScore":"много"}`},
		{name: "empty body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.admin(t, http.MethodPost, "/api/admin/institutions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, decode[dto.ErrorResponse](t, w).Error.Field)
			}
		})
	}
	assert.Zero(t, f.institutions.count())
}

func TestMalformedIDIsNotFound(t *testing.T) {
	f := newFixture(t)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := f.admin(t, method, "/api/admin/institutions/42", `{}`)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
	}
}

func TestMutationsRequireAdmin(t *testing.T) {
	f := newFixture(t)
	inst := f.createInstitution(t, "Вуз", "Университет")
	_, studentToken := f.login(t, models.RoleStudent)
	_, parentToken := f.login(t, models.RoleParent)
	path := "/api/admin/institutions/" + inst.ID.String()

	requests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/admin/institutions", ""},
		{http.MethodPost, "/api/admin/institutions", `{"name":"X","description":"d","type":"t","direction":"x","minScore":1}`},
		{http.MethodPut, path, `{"name":"Взлом"}`},
		{http.MethodDelete, path, ""},
	}
	for _, r := range requests {
		assert.Equal(t, http.StatusUnauthorized, f.do(t, "", r.method, r.path, r.body).Code, r.method)
		assert.Equal(t, http.StatusForbidden, f.do(t, studentToken, r.method, r.path, r.body).Code, r.method)
		assert.Equal(t, http.StatusForbidden, f.do(t, parentToken, r.method, r.path, r.body).Code, r.method)
	}

	assert.Equal(t, 1, f.institutions.count())
	got, err := f.institutions.GetByID(context.Background(), inst.ID)
	require.NoError(t, err)
	assert.Equal(t, "Вуз", got.Name)
}

func TestUsersCannotDeleteThemselves(t *testing.T) {
	f := newFixture(t)

	w := f.admin(t, http.MethodDelete, "/api/admin/users/"+f.adminID.String(), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot delete yourself", decode[dto.ErrorResponse](t, w).Error.Message)
	assert.Empty(t, f.users.deleted)

	other := uuid.New()
	w = f.admin(t, http.MethodDelete, "/api/admin/users/"+other.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"User deleted successfully"}`, w.Body.String())
	assert.Equal(t, []uuid.UUID{other}, f.users.deleted)
}

func TestUserCreateValidation(t *testing.T) {
	f := newFixture(t)

	w := f.admin(t, http.MethodPost, "/api/admin/users", `{"name":"A","email":"a@example.com","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "password", decode[dto.ErrorResponse](t, w).Error.Field)

	w = f.admin(t, http.MethodPost, "/api/admin/users", `{"name":"A","email":"a@example.com","password":"123456","role":"ROOT"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.admin(t, http.MethodPut, "/api/admin/users/"+uuid.NewString(), `{"role":null}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.admin(t, http.MethodPost, "/api/admin/users", `{"name":"A","email":"a@example.com","password":"123456"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}
