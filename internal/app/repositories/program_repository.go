package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/dberrors"
	"github.com/yigit/abiturient/internal/pkg/logger"
)

const programInstitutionFK = "programs_institution_id_fkey"

var programFilter = listFilter{
	SearchColumns: []string{"p.name", "p.description", "p.faculty"},
	Filters:       map[string]string{"faculty": "p.faculty", "institutionId": "p.institution_id"},
	UUIDFilters:   []string{"institutionId"},
}

// ProgramRepository handles program database operations
type ProgramRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewProgramRepository creates a new ProgramRepository
func NewProgramRepository(db DBTX) *ProgramRepository {
	return &ProgramRepository{db: db, sb: newBuilder()}
}

func (r *ProgramRepository) selectPrograms() squirrel.SelectBuilder {
	return r.sb.Select(
		"p.id", "p.name", "p.description", "p.faculty", "p.requirements", "p.exams",
		"p.institution_id", "p.created_at", "p.updated_at",
		"i.id", "i.name", "i.type", "i.website",
	).From("programs p").Join("institutions i ON i.id = p.institution_id")
}

func scanProgram(row pgx.Row, withWebsite bool) (*models.Program, error) {
	p := &models.Program{Institution: &models.InstitutionRef{}}
	var website *string
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Faculty, &p.Requirements, &p.Exams,
		&p.InstitutionID, &p.CreatedAt, &p.UpdatedAt,
		&p.Institution.ID, &p.Institution.Name, &p.Institution.Type, &website,
	)
	if err != nil {
		return nil, err
	}
	if p.Exams == nil {
		p.Exams = []string{}
	}
	if withWebsite {
		p.Institution.Website = website
	}
	return p, nil
}

func (r *ProgramRepository) listQuery(q dto.ListQuery) (squirrel.SelectBuilder, error) {
	sb, err := programFilter.apply(r.selectPrograms(), q)
	if err != nil {
		return sb, err
	}
	return page(sb, "p.created_at DESC", q), nil
}

// List returns one page of programs with their institution summary.
func (r *ProgramRepository) List(ctx context.Context, q dto.ListQuery) ([]models.Program, int64, error) {
	query, err := r.listQuery(q)
	if err != nil {
		return nil, 0, err
	}
	total, err := programFilter.count(ctx, r.db, r.sb, "programs p", q)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list programs SQL")
		return nil, 0, fmt.Errorf("failed to build list programs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list programs query")
		return nil, 0, fmt.Errorf("error querying programs: %w", err)
	}
	defer rows.Close()

	items := []models.Program{}
	for rows.Next() {
		p, err := scanProgram(rows, false)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning program row: %w", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating program rows: %w", err)
	}
	return items, total, nil
}

// GetByID retrieves a program; its institution summary includes the website.
func (r *ProgramRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	sql, args, err := r.selectPrograms().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get program query: %w", err)
	}

	p, err := scanProgram(r.db.QueryRow(ctx, sql, args...), true)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		logger.Error().Err(err).Str("programID", id.String()).Msg("Error scanning program row")
		return nil, fmt.Errorf("error getting program by ID: %w", err)
	}
	return p, nil
}

// institutionMissing maps a violation of the institution foreign key.
func institutionMissing(err error) error {
	if dberrors.IsForeignKeyViolation(err, programInstitutionFK) {
		return apperrors.NewResourceNotFoundError("Institution not found")
	}
	return err
}

// Create inserts p in one statement; a dangling institution id surfaces as a
// not found error from the foreign key.
func (r *ProgramRepository) Create(ctx context.Context, p *models.Program) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Exams == nil {
		p.Exams = []string{}
	}
	sql, args, err := r.sb.Insert("programs").
		Columns("id", "name", "description", "faculty", "requirements", "exams", "institution_id").
		Values(p.ID, p.Name, p.Description, p.Faculty, p.Requirements, p.Exams, p.InstitutionID).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create program SQL")
		return fmt.Errorf("failed to build create program query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if mapped := institutionMissing(err); mapped != err {
			return mapped
		}
		logger.Error().Err(err).Msg("Error executing create program query")
		return fmt.Errorf("error creating program: %w", err)
	}
	return nil
}

// Update applies set to the program; moving it to a missing institution
// reports "Institution not found".
func (r *ProgramRepository) Update(ctx context.Context, id uuid.UUID, set map[string]interface{}) error {
	return institutionMissing(updateByID(ctx, r.db, r.sb, "programs", id, set))
}

// Delete removes a program
func (r *ProgramRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, r.sb, "programs", id)
}
