package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
)

// failingDB answers every statement with err.
type failingDB struct {
	err   error
	execs []string
}

type failingRow struct{ err error }

func (r failingRow) Scan(dest ...any) error { return r.err }

func (d *failingDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.execs = append(d.execs, sql)
	return pgconn.CommandTag{}, d.err
}

func (d *failingDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, d.err
}

func (d *failingDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return failingRow{err: d.err}
}

// updatedDB reports rowsAffected for every Exec.
type updatedDB struct {
	failingDB
	tag string
}

func (d *updatedDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.execs = append(d.execs, sql)
	return pgconn.NewCommandTag(d.tag), nil
}

func fkViolation(constraint string) error {
	return &pgconn.PgError{Code: "23503", ConstraintName: constraint}
}

func TestProgramInstitutionForeignKey(t *testing.T) {
	db := &failingDB{err: fkViolation(programInstitutionFK)}
	r := NewProgramRepository(db)
	ctx := context.Background()

	p := &models.Program{Name: "ПМИ", InstitutionID: uuid.New()}
	err := r.Create(ctx, p)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Equal(t, "Institution not found", apperrors.Message(err, ""))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, []string{}, p.Exams)

	err = r.Update(ctx, uuid.New(), map[string]interface{}{"institution_id": uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Equal(t, "Institution not found", apperrors.Message(err, ""))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "UPDATE programs SET")
}

func TestReportUserForeignKey(t *testing.T) {
	db := &failingDB{err: fkViolation(reportUserFK)}
	r := NewReportRepository(db)
	ctx := context.Background()

	err := r.Create(ctx, &models.Report{Title: "План", UserID: uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Equal(t, "User not found", apperrors.Message(err, ""))

	err = r.Update(ctx, uuid.New(), map[string]interface{}{"user_id": uuid.New()})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Equal(t, "User not found", apperrors.Message(err, ""))
}

func TestForeignKeyOfOtherConstraintIsNotMapped(t *testing.T) {
	db := &failingDB{err: fkViolation("programs_other_fkey")}
	err := NewProgramRepository(db).Create(context.Background(), &models.Program{})

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrResourceNotFound)
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
}

func TestUserEmailUniqueConstraint(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		wantTaken  bool
	}{
		{name: "email key", constraint: userEmailKey, wantTaken: true},
		{name: "other key", constraint: "users_pkey", wantTaken: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &failingDB{err: &pgconn.PgError{Code: "23505", ConstraintName: tt.constraint}}
			r := NewUserRepository(db)
			ctx := context.Background()

			createErr := r.Create(ctx, &models.User{Email: " taken@example.com ", Name: "Тест", Role: models.RoleStudent})
			updateErr := r.Update(ctx, uuid.New(), map[string]interface{}{"email": "taken@example.com"})

			for _, err := range []error{createErr, updateErr} {
				require.Error(t, err)
				assert.Equal(t, tt.wantTaken, errors.Is(err, apperrors.ErrEmailAlreadyExists))
			}
		})
	}
}

func TestUpdateNotNullViolationIsValidationError(t *testing.T) {
	db := &failingDB{err: &pgconn.PgError{Code: "23502", ColumnName: "min_score"}}
	err := NewInstitutionRepository(db).Update(context.Background(), uuid.New(), map[string]interface{}{"min_score": nil})

	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "minScore cannot be null", apperrors.Message(err, ""))
	var ce *apperrors.CustomError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "minScore", ce.Details["field"])
}

func TestUpdateByIDRowsAffected(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantErr error
	}{
		{name: "updated", tag: "UPDATE 1"},
		{name: "missing", tag: "UPDATE 0", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &updatedDB{tag: tt.tag}
			err := updateByID(context.Background(), db, newBuilder(), "reports", uuid.New(), map[string]interface{}{"title": "x"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, db.execs, 1)
			assert.Contains(t, db.execs[0], "updated_at = now()")
		})
	}
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "minScore", fieldName("min_score"))
	assert.Equal(t, "institutionId", fieldName("institution_id"))
	assert.Equal(t, "name", fieldName("name"))
	assert.Equal(t, "", fieldName(""))
}

func TestListQueryHugePageSaturatesOffset(t *testing.T) {
	r := NewInstitutionRepository(nil)

	sb, err := r.listQuery(dto.ListQuery{Page: 1e18, Limit: 10})
	require.NoError(t, err)
	sql, _, err := sb.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 10 OFFSET 9223372036854775807")
}
