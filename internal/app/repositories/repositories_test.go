package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
)

func TestSearchPatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%Test%", searchPattern("Test"))
	assert.Equal(t, `%100\%\_a\\b%`, searchPattern(`100%_a\b`))
}

func TestInstitutionListQuery(t *testing.T) {
	r := NewInstitutionRepository(nil)

	sb, err := r.listQuery(dto.ListQuery{Page: 3, Limit: 10, Search: "Test", Filters: map[string]string{"type": "college"}})
	require.NoError(t, err)
	sql, args, err := sb.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM institutions i")
	assert.Contains(t, sql, "(i.name ILIKE $1 OR i.description ILIKE $2 OR i.direction ILIKE $3)")
	assert.Contains(t, sql, "i.type = $4")
	assert.Contains(t, sql, "ORDER BY i.created_at DESC LIMIT 10 OFFSET 20")
	assert.Contains(t, sql, "AS programs_count")
	assert.Equal(t, []interface{}{"%Test%", "%Test%", "%Test%", "college"}, args)
}

func TestListQueryWithoutCriteria(t *testing.T) {
	r := NewUserRepository(nil)

	sb, err := r.listQuery(dto.ListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	sql, args, err := sb.ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sql, "WHERE")
	assert.NotContains(t, sql, "password")
	assert.Contains(t, sql, "LIMIT 10 OFFSET 0")
	assert.Empty(t, args)
}

func TestProgramListQueryFilters(t *testing.T) {
	r := NewProgramRepository(nil)
	instID := uuid.New()

	sb, err := r.listQuery(dto.ListQuery{Page: 1, Limit: 5, Filters: map[string]string{
		"institutionId": instID.String(),
		"faculty":       "ФКН",
	}})
	require.NoError(t, err)
	sql, args, err := sb.ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "JOIN institutions i ON i.id = p.institution_id")
	assert.Contains(t, sql, "p.faculty = $1 AND p.institution_id = $2")
	// uuid.UUID is a driver.Valuer, so squirrel binds its string form.
	assert.Equal(t, []interface{}{"ФКН", instID.String()}, args)
}

func TestMalformedUUIDFilterIsValidationError(t *testing.T) {
	r := NewReportRepository(nil)

	_, err := r.listQuery(dto.ListQuery{Page: 1, Limit: 10, Filters: map[string]string{"userId": "42"}})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestReportSearchColumns(t *testing.T) {
	r := NewReportRepository(nil)

	sb, err := r.listQuery(dto.ListQuery{Page: 1, Limit: 10, Search: "план"})
	require.NoError(t, err)
	sql, _, err := sb.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "(r.title ILIKE $1 OR r.content ILIKE $2 OR r.recommendations ILIKE $3)")
}

func TestAnalyticsRejectsUnknownTable(t *testing.T) {
	assert.NoError(t, checkTable(TableReports))
	assert.Error(t, checkTable("users; DROP TABLE users"))
}
