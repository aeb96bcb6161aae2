package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/dberrors"
	"github.com/yigit/abiturient/internal/pkg/logger"
)

const savedInstitutionFK = "saved_institutions_institution_id_fkey"

// SavedInstitutionRepository manages student bookmarks of institutions.
type SavedInstitutionRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewSavedInstitutionRepository creates a new SavedInstitutionRepository
func NewSavedInstitutionRepository(db DBTX) *SavedInstitutionRepository {
	return &SavedInstitutionRepository{db: db, sb: newBuilder()}
}

// List returns the bookmarks of userID, most recently saved first.
func (r *SavedInstitutionRepository) List(ctx context.Context, userID uuid.UUID) ([]models.SavedInstitution, error) {
	sql, args, err := r.sb.Select(
		"i.id", "i.name", "i.description", "i.type", "i.direction", "i.min_score",
		"i.website", "i.logo", "i.created_at", "i.updated_at",
		"(SELECT COUNT(*) FROM programs p WHERE p.institution_id = i.id)",
		"(SELECT COUNT(*) FROM saved_institutions x WHERE x.institution_id = i.id)",
		"s.created_at",
	).
		From("saved_institutions s").
		Join("institutions i ON i.id = s.institution_id").
		Where(squirrel.Eq{"s.user_id": userID}).
		OrderBy("s.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build saved institutions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error querying saved institutions")
		return nil, fmt.Errorf("error querying saved institutions: %w", err)
	}
	defer rows.Close()

	out := []models.SavedInstitution{}
	for rows.Next() {
		var s models.SavedInstitution
		inst := &s.Institution
		if err := rows.Scan(
			&inst.ID, &inst.Name, &inst.Description, &inst.Type, &inst.Direction, &inst.MinScore,
			&inst.Website, &inst.Logo, &inst.CreatedAt, &inst.UpdatedAt,
			&inst.Count.Programs, &inst.Count.SavedBy, &s.SavedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning saved institution row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Save bookmarks institutionID for userID. Saving twice is a no-op.
func (r *SavedInstitutionRepository) Save(ctx context.Context, userID, institutionID uuid.UUID) error {
	sql, args, err := r.sb.Insert("saved_institutions").
		Columns("user_id", "institution_id").
		Values(userID, institutionID).
		Suffix("ON CONFLICT (user_id, institution_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build save institution query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err, savedInstitutionFK) {
			return apperrors.NewResourceNotFoundError("Institution not found")
		}
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error saving institution")
		return fmt.Errorf("error saving institution: %w", err)
	}
	return nil
}

// Remove deletes a bookmark; a missing bookmark is a not found error.
func (r *SavedInstitutionRepository) Remove(ctx context.Context, userID, institutionID uuid.UUID) error {
	sql, args, err := r.sb.Delete("saved_institutions").
		Where(squirrel.Eq{"user_id": userID, "institution_id": institutionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build remove saved institution query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error removing saved institution")
		return fmt.Errorf("error removing saved institution: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("Saved institution not found")
	}
	return nil
}
