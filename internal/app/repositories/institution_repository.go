package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/logger"
)

var institutionFilter = listFilter{
	SearchColumns: []string{"i.name", "i.description", "i.direction"},
	Filters:       map[string]string{"type": "i.type"},
}

// InstitutionRepository handles institution database operations
type InstitutionRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewInstitutionRepository creates a new InstitutionRepository
func NewInstitutionRepository(db DBTX) *InstitutionRepository {
	return &InstitutionRepository{db: db, sb: newBuilder()}
}

func (r *InstitutionRepository) selectInstitutions() squirrel.SelectBuilder {
	return r.sb.Select(
		"i.id", "i.name", "i.description", "i.type", "i.direction", "i.min_score",
		"i.website", "i.logo", "i.created_at", "i.updated_at",
		"(SELECT COUNT(*) FROM programs p WHERE p.institution_id = i.id) AS programs_count",
		"(SELECT COUNT(*) FROM saved_institutions s WHERE s.institution_id = i.id) AS saved_count",
	).From("institutions i")
}

func scanInstitution(row pgx.Row) (*models.Institution, error) {
	inst := &models.Institution{}
	err := row.Scan(
		&inst.ID, &inst.Name, &inst.Description, &inst.Type, &inst.Direction, &inst.MinScore,
		&inst.Website, &inst.Logo, &inst.CreatedAt, &inst.UpdatedAt,
		&inst.Count.Programs, &inst.Count.SavedBy,
	)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// listQuery builds the page query for q.
func (r *InstitutionRepository) listQuery(q dto.ListQuery) (squirrel.SelectBuilder, error) {
	sb, err := institutionFilter.apply(r.selectInstitutions(), q)
	if err != nil {
		return sb, err
	}
	return page(sb, "i.created_at DESC", q), nil
}

// List returns one page of institutions and the total number of matches.
func (r *InstitutionRepository) List(ctx context.Context, q dto.ListQuery) ([]models.Institution, int64, error) {
	query, err := r.listQuery(q)
	if err != nil {
		return nil, 0, err
	}
	total, err := institutionFilter.count(ctx, r.db, r.sb, "institutions i", q)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list institutions SQL")
		return nil, 0, fmt.Errorf("failed to build list institutions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list institutions query")
		return nil, 0, fmt.Errorf("error querying institutions: %w", err)
	}
	defer rows.Close()

	items := []models.Institution{}
	for rows.Next() {
		inst, err := scanInstitution(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning institution row: %w", err)
		}
		items = append(items, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating institution rows: %w", err)
	}
	return items, total, nil
}

// GetByID retrieves an institution with its relation counts.
func (r *InstitutionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Institution, error) {
	sql, args, err := r.selectInstitutions().Where(squirrel.Eq{"i.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get institution query: %w", err)
	}

	inst, err := scanInstitution(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		logger.Error().Err(err).Str("institutionID", id.String()).Msg("Error scanning institution row")
		return nil, fmt.Errorf("error getting institution by ID: %w", err)
	}
	return inst, nil
}

// RecentPrograms returns the newest programs of an institution.
func (r *InstitutionRepository) RecentPrograms(ctx context.Context, id uuid.UUID, limit uint64) ([]models.ProgramSummary, error) {
	sql, args, err := r.sb.Select("id", "name", "faculty", "created_at").
		From("programs").
		Where(squirrel.Eq{"institution_id": id}).
		OrderBy("created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recent programs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("institutionID", id.String()).Msg("Error querying recent programs")
		return nil, fmt.Errorf("error querying programs: %w", err)
	}
	defer rows.Close()

	out := []models.ProgramSummary{}
	for rows.Next() {
		var p models.ProgramSummary
		if err := rows.Scan(&p.ID, &p.Name, &p.Faculty, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning program row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create inserts inst, filling ID and timestamps.
func (r *InstitutionRepository) Create(ctx context.Context, inst *models.Institution) error {
	if inst.ID == uuid.Nil {
		inst.ID = uuid.New()
	}
	sql, args, err := r.sb.Insert("institutions").
		Columns("id", "name", "description", "type", "direction", "min_score", "website", "logo").
		Values(inst.ID, inst.Name, inst.Description, inst.Type, inst.Direction, inst.MinScore, inst.Website, inst.Logo).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create institution SQL")
		return fmt.Errorf("failed to build create institution query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&inst.CreatedAt, &inst.UpdatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create institution query")
		return fmt.Errorf("error creating institution: %w", err)
	}
	return nil
}

// Update applies the column values in set.
func (r *InstitutionRepository) Update(ctx context.Context, id uuid.UUID, set map[string]interface{}) error {
	return updateByID(ctx, r.db, r.sb, "institutions", id, set)
}

// Delete removes an institution; its programs and bookmarks cascade.
func (r *InstitutionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, r.sb, "institutions", id)
}

// CountByName is used by the seeder to stay idempotent.
func (r *InstitutionRepository) CountByName(ctx context.Context, name string) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("institutions").Where(squirrel.Eq{"name": name}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&n)
	return n, err
}
