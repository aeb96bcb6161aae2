package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes this service reacts to.
const (
	CodeNotNullViolation    = "23502"
	CodeForeignKeyViolation = "23503"
	CodeUniqueViolation     = "23505"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func matches(err error, code, constraintName string) bool {
	pgErr, ok := pgError(err)
	if !ok || pgErr.Code != code {
		return false
	}
	return constraintName == "" || pgErr.ConstraintName == constraintName
}

// IsDuplicateConstraintError reports a unique violation on constraintName.
// An empty constraintName matches any unique violation.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	return matches(err, CodeUniqueViolation, constraintName)
}

// IsForeignKeyViolation reports a foreign key violation on constraintName.
// An empty constraintName matches any foreign key violation.
func IsForeignKeyViolation(err error, constraintName string) bool {
	return matches(err, CodeForeignKeyViolation, constraintName)
}

// IsNotNullViolation reports a NOT NULL violation on any column.
func IsNotNullViolation(err error) bool {
	return matches(err, CodeNotNullViolation, "")
}

// Column returns the column named by a PostgreSQL error, if any.
func Column(err error) string {
	if pgErr, ok := pgError(err); ok {
		return pgErr.ColumnName
	}
	return ""
}
