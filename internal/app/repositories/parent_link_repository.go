package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/pkg/logger"
)

// ParentLinkRepository links a parent account to one student.
type ParentLinkRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewParentLinkRepository creates a new ParentLinkRepository
func NewParentLinkRepository(db DBTX) *ParentLinkRepository {
	return &ParentLinkRepository{db: db, sb: newBuilder()}
}

// StudentOf returns the student linked to parentID, or ErrNotFound.
func (r *ParentLinkRepository) StudentOf(ctx context.Context, parentID uuid.UUID) (*models.UserRef, error) {
	sql, args, err := r.sb.Select("u.id", "u.name", "u.email", "u.role", "u.avatar").
		From("parent_links l").
		Join("users u ON u.id = l.student_id").
		Where(squirrel.Eq{"l.parent_id": parentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build linked student query: %w", err)
	}

	ref := &models.UserRef{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&ref.ID, &ref.Name, &ref.Email, &ref.Role, &ref.Avatar)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		logger.Error().Err(err).Str("parentID", parentID.String()).Msg("Error scanning linked student")
		return nil, fmt.Errorf("error getting linked student: %w", err)
	}
	return ref, nil
}

// Link points parentID at studentID, replacing any previous link.
func (r *ParentLinkRepository) Link(ctx context.Context, parentID, studentID uuid.UUID) error {
	sql, args, err := r.sb.Insert("parent_links").
		Columns("parent_id", "student_id").
		Values(parentID, studentID).
		Suffix("ON CONFLICT (parent_id) DO UPDATE SET student_id = EXCLUDED.student_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build link query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error linking parent: %w", err)
	}
	return nil
}
