package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintChecks(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "users_email_key"})
	fk := &pgconn.PgError{Code: CodeForeignKeyViolation, ConstraintName: "programs_institution_id_fkey"}
	notNull := &pgconn.PgError{Code: CodeNotNullViolation, ColumnName: "name"}

	assert.True(t, IsDuplicateConstraintError(dup, "users_email_key"))
	assert.True(t, IsDuplicateConstraintError(dup, ""))
	assert.False(t, IsDuplicateConstraintError(dup, "other_key"))
	assert.False(t, IsDuplicateConstraintError(fk, ""))

	assert.True(t, IsForeignKeyViolation(fk, "programs_institution_id_fkey"))
	assert.False(t, IsForeignKeyViolation(fk, "reports_user_id_fkey"))

	assert.True(t, IsNotNullViolation(notNull))
	assert.Equal(t, "name", Column(notNull))

	plain := errors.New("connection reset")
	assert.False(t, IsDuplicateConstraintError(plain, ""))
	assert.False(t, IsForeignKeyViolation(plain, ""))
	assert.Empty(t, Column(plain))
}
