package resource_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
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
)

// memPrograms is an in-memory services.ProgramStore. The institution foreign
// key is checked against institutions and fails the way the repository does.
type memPrograms struct {
	mu           sync.Mutex
	rows         map[uuid.UUID]*models.Program
	institutions *memInstitutions
}

func newMemPrograms(institutions *memInstitutions) *memPrograms {
	return &memPrograms{rows: map[uuid.UUID]*models.Program{}, institutions: institutions}
}

func (m *memPrograms) institution(id uuid.UUID) (*models.Institution, error) {
	inst, err := m.institutions.GetByID(context.Background(), id)
	if err != nil {
		return nil, apperrors.NewResourceNotFoundError("Institution not found")
	}
	return inst, nil
}

func (m *memPrograms) List(ctx context.Context, q dto.ListQuery) ([]models.Program, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []models.Program{}
	for _, p := range m.rows {
		items = append(items, *p)
	}
	return items, int64(len(items)), nil
}

func (m *memPrograms) GetByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	inst, err := m.institution(p.InstitutionID)
	if err != nil {
		return nil, err
	}
	cp := *p
	cp.Exams = append([]string(nil), p.Exams...)
	cp.Institution = &models.InstitutionRef{ID: inst.ID, Name: inst.Name, Type: inst.Type, Website: inst.Website}
	return &cp, nil
}

func (m *memPrograms) Create(ctx context.Context, p *models.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.institution(p.InstitutionID); err != nil {
		return err
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memPrograms) Update(ctx context.Context, id uuid.UUID, set map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return repositories.ErrNotFound
	}
	next := *p
	for col, v := range set {
		switch col {
		case "name":
			next.Name = v.(string)
		case "description":
			next.Description = v.(string)
		case "faculty":
			next.Faculty = v.(string)
		case "requirements":
			next.Requirements = v.(string)
		case "exams":
			next.Exams = v.([]string)
		case "institution_id":
			next.InstitutionID = v.(uuid.UUID)
			if _, err := m.institution(next.InstitutionID); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown column %s", col)
		}
	}
	next.UpdatedAt = time.Now()
	m.rows[id] = &next
	return nil
}

func (m *memPrograms) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func programBody(institutionID uuid.UUID, exams string) string {
	return fmt.Sprintf(`{"name":"Прикладная математика","description":"d","faculty":"ФКН","requirements":"ЕГЭ","exams":%s,"institutionId":%q}`,
		exams, institutionID)
}

func TestProgramCreateWithExamsRoundTrip(t *testing.T) {
	f := newFixture(t)
	inst := f.createInstitution(t, "ВШЭ", "Университет")

	w := f.admin(t, http.MethodPost, "/api/admin/programs", programBody(inst.ID, `["Математика","Информатика","Русский язык"]`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Program](t, w)
	assert.Equal(t, []string{"Математика", "Информатика", "Русский язык"}, created.Exams)
	assert.Equal(t, inst.ID, created.InstitutionID)
	require.NotNil(t, created.Institution)
	assert.Equal(t, "ВШЭ", created.Institution.Name)

	path := "/api/admin/programs/" + created.ID.String()
	w = f.admin(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.Exams, decode[models.Program](t, w).Exams)

	w = f.admin(t, http.MethodPut, path, `{"exams":[]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]json.RawMessage](t, w)
	assert.JSONEq(t, `[]`, string(body["exams"]))
}

func TestProgramWithMissingInstitution(t *testing.T) {
	f := newFixture(t)
	inst := f.createInstitution(t, "МГУ", "Университет")
	missing := uuid.New()

	w := f.admin(t, http.MethodPost, "/api/admin/programs", programBody(missing, `["Математика"]`))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Institution not found", decode[dto.ErrorResponse](t, w).Error.Message)

	w = f.admin(t, http.MethodPost, "/api/admin/programs", programBody(inst.ID, `["Математика"]`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := "/api/admin/programs/" + decode[models.Program](t, w).ID.String()

	w = f.admin(t, http.MethodPut, path, fmt.Sprintf(`{"institutionId":%q}`, missing))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Institution not found", decode[dto.ErrorResponse](t, w).Error.Message)

	w = f.admin(t, http.MethodPut, "/api/admin/programs/"+uuid.NewString(), `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Program not found", decode[dto.ErrorResponse](t, w).Error.Message)
}
