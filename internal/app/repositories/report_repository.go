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

const reportUserFK = "reports_user_id_fkey"

var reportFilter = listFilter{
	SearchColumns: []string{"r.title", "r.content", "r.recommendations"},
	Filters:       map[string]string{"userId": "r.user_id"},
	UUIDFilters:   []string{"userId"},
}

// ReportRepository handles report database operations
type ReportRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db DBTX) *ReportRepository {
	return &ReportRepository{db: db, sb: newBuilder()}
}

func (r *ReportRepository) selectReports() squirrel.SelectBuilder {
	return r.sb.Select(
		"r.id", "r.title", "r.content", "r.recommendations", "r.user_id", "r.created_at", "r.updated_at",
		"u.id", "u.name", "u.email", "u.role", "u.avatar",
	).From("reports r").Join("users u ON u.id = r.user_id")
}

func scanReport(row pgx.Row, withAvatar bool) (*models.Report, error) {
	rep := &models.Report{User: &models.UserRef{}}
	var avatar *string
	err := row.Scan(
		&rep.ID, &rep.Title, &rep.Content, &rep.Recommendations, &rep.UserID, &rep.CreatedAt, &rep.UpdatedAt,
		&rep.User.ID, &rep.User.Name, &rep.User.Email, &rep.User.Role, &avatar,
	)
	if err != nil {
		return nil, err
	}
	if withAvatar {
		rep.User.Avatar = avatar
	}
	return rep, nil
}

func (r *ReportRepository) listQuery(q dto.ListQuery) (squirrel.SelectBuilder, error) {
	sb, err := reportFilter.apply(r.selectReports(), q)
	if err != nil {
		return sb, err
	}
	return page(sb, "r.created_at DESC", q), nil
}

// List returns one page of reports with their owner summary.
func (r *ReportRepository) List(ctx context.Context, q dto.ListQuery) ([]models.Report, int64, error) {
	query, err := r.listQuery(q)
	if err != nil {
		return nil, 0, err
	}
	total, err := reportFilter.count(ctx, r.db, r.sb, "reports r", q)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list reports SQL")
		return nil, 0, fmt.Errorf("failed to build list reports query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list reports query")
		return nil, 0, fmt.Errorf("error querying reports: %w", err)
	}
	defer rows.Close()

	items := []models.Report{}
	for rows.Next() {
		rep, err := scanReport(rows, false)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning report row: %w", err)
		}
		items = append(items, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating report rows: %w", err)
	}
	return items, total, nil
}

// GetByID retrieves a report with its author summary
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	sql, args, err := r.selectReports().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get report query: %w", err)
	}

	rep, err := scanReport(r.db.QueryRow(ctx, sql, args...), true)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		logger.Error().Err(err).Str("reportID", id.String()).Msg("Error scanning report row")
		return nil, fmt.Errorf("error getting report by ID: %w", err)
	}
	return rep, nil
}

// userMissing maps a violation of the report author foreign key.
func userMissing(err error) error {
	if dberrors.IsForeignKeyViolation(err, reportUserFK) {
		return apperrors.NewResourceNotFoundError("User not found")
	}
	return err
}

// Create inserts rep in one statement relying on the user foreign key.
func (r *ReportRepository) Create(ctx context.Context, rep *models.Report) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	sql, args, err := r.sb.Insert("reports").
		Columns("id", "title", "content", "recommendations", "user_id").
		Values(rep.ID, rep.Title, rep.Content, rep.Recommendations, rep.UserID).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create report SQL")
		return fmt.Errorf("failed to build create report query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&rep.CreatedAt, &rep.UpdatedAt); err != nil {
		if mapped := userMissing(err); mapped != err {
			return mapped
		}
		logger.Error().Err(err).Msg("Error executing create report query")
		return fmt.Errorf("error creating report: %w", err)
	}
	return nil
}

// Update applies set to the report; reassigning it to a missing user reports
// "User not found".
func (r *ReportRepository) Update(ctx context.Context, id uuid.UUID, set map[string]interface{}) error {
	return userMissing(updateByID(ctx, r.db, r.sb, "reports", id, set))
}

// Delete removes a report
func (r *ReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, r.sb, "reports", id)
}
