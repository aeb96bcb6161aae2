package repositories

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/dberrors"
	"github.com/yigit/abiturient/internal/pkg/helpers"
	"github.com/yigit/abiturient/internal/pkg/logger"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = apperrors.ErrResourceNotFound

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository             *UserRepository
	InstitutionRepository      *InstitutionRepository
	ProgramRepository          *ProgramRepository
	ReportRepository           *ReportRepository
	StudentRecordRepository    *StudentRecordRepository
	SavedInstitutionRepository *SavedInstitutionRepository
	ParentLinkRepository       *ParentLinkRepository
	AnalyticsRepository        *AnalyticsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:             NewUserRepository(db),
		InstitutionRepository:      NewInstitutionRepository(db),
		ProgramRepository:          NewProgramRepository(db),
		ReportRepository:           NewReportRepository(db),
		StudentRecordRepository:    NewStudentRecordRepository(db),
		SavedInstitutionRepository: NewSavedInstitutionRepository(db),
		ParentLinkRepository:       NewParentLinkRepository(db),
		AnalyticsRepository:        NewAnalyticsRepository(db),
	}
}

func newBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchPattern turns user input into an ILIKE substring pattern with the
// LIKE wildcards escaped.
func searchPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// listFilter describes how one resource maps the listing contract onto SQL.
type listFilter struct {
	// SearchColumns are OR'd with ILIKE.
	SearchColumns []string
	// Filters maps a query parameter onto a column compared with =.
	Filters map[string]string
	// UUIDFilters lists the Filters keys whose value must be a UUID.
	UUIDFilters []string
}

// apply adds the search and filter predicates of q to sb.
func (f listFilter) apply(sb squirrel.SelectBuilder, q dto.ListQuery) (squirrel.SelectBuilder, error) {
	if q.Search != "" && len(f.SearchColumns) > 0 {
		pattern := searchPattern(q.Search)
		or := make(squirrel.Or, 0, len(f.SearchColumns))
		for _, col := range f.SearchColumns {
			or = append(or, squirrel.ILike{col: pattern})
		}
		sb = sb.Where(or)
	}

	// Deterministic order keeps generated SQL stable.
	for _, param := range slices.Sorted(maps.Keys(f.Filters)) {
		value := q.Filter(param)
		if value == "" {
			continue
		}
		col := f.Filters[param]
		if slices.Contains(f.UUIDFilters, param) {
			id, err := uuid.Parse(value)
			if err != nil {
				return sb, apperrors.NewValidationError(param, param+" must be a valid UUID")
			}
			sb = sb.Where(squirrel.Eq{col: id})
			continue
		}
		sb = sb.Where(squirrel.Eq{col: value})
	}
	return sb, nil
}

// count runs SELECT COUNT(*) over from with the predicates of q.
func (f listFilter) count(ctx context.Context, db DBTX, sb squirrel.StatementBuilderType, from string, q dto.ListQuery) (int64, error) {
	query, err := f.apply(sb.Select("COUNT(*)").From(from), q)
	if err != nil {
		return 0, err
	}
	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("from", from).Msg("Error executing count query")
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return total, nil
}

// page adds ordering and LIMIT/OFFSET.
func page(sb squirrel.SelectBuilder, orderBy string, q dto.ListQuery) squirrel.SelectBuilder {
	offset, limit := helpers.CalculateOffsetLimit(q.Page, q.Limit)
	return sb.OrderBy(orderBy).Limit(uint64(limit)).Offset(offset)
}

// updateByID applies set to the row id of table, always bumping updated_at.
func updateByID(ctx context.Context, db DBTX, sb squirrel.StatementBuilderType, table string, id uuid.UUID, set map[string]interface{}) error {
	sql, args, err := sb.Update(table).
		SetMap(set).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error building update SQL")
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsNotNullViolation(err) {
			field := fieldName(dberrors.Column(err))
			return apperrors.NewValidationError(field, field+" cannot be null")
		}
		return fmt.Errorf("error updating %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// fieldName turns a snake_case column into the camelCase JSON field name.
func fieldName(column string) string {
	parts := strings.Split(column, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func deleteByID(ctx context.Context, db DBTX, sb squirrel.StatementBuilderType, table string, id uuid.UUID) error {
	sql, args, err := sb.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error building delete SQL")
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", table).Str("id", id.String()).Msg("Error executing delete query")
		return fmt.Errorf("error deleting from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
