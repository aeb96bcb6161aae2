package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/logger"
)

// Tables that analytics may aggregate over.
const (
	TableUsers        = "users"
	TableInstitutions = "institutions"
	TablePrograms     = "programs"
	TableReports      = "reports"
)

var analyticsTables = map[string]bool{
	TableUsers:        true,
	TableInstitutions: true,
	TablePrograms:     true,
	TableReports:      true,
}

// GroupCount is one bucket of a GROUP BY count.
type GroupCount struct {
	Key   string
	Count int64
}

// AnalyticsRepository runs the aggregate queries of the admin dashboard.
type AnalyticsRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewAnalyticsRepository creates a new AnalyticsRepository
func NewAnalyticsRepository(db DBTX) *AnalyticsRepository {
	return &AnalyticsRepository{db: db, sb: newBuilder()}
}

func checkTable(table string) error {
	if !analyticsTables[table] {
		return fmt.Errorf("analytics: unsupported table %q", table)
	}
	return nil
}

// Count returns the number of rows of table, restricted to rows created at or
// after since when since is non-zero.
func (r *AnalyticsRepository) Count(ctx context.Context, table string, since time.Time) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	sb := r.sb.Select("COUNT(*)").From(table)
	if !since.IsZero() {
		sb = sb.Where(squirrel.GtOrEq{"created_at": since})
	}
	sql, args, err := sb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error counting rows")
		return 0, fmt.Errorf("error counting %s: %w", table, err)
	}
	return n, nil
}

// CountBy groups table by column, largest bucket first.
func (r *AnalyticsRepository) CountBy(ctx context.Context, table, column string) ([]GroupCount, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	sql, args, err := r.sb.Select(column, "COUNT(*)").
		From(table).
		GroupBy(column).
		OrderBy("COUNT(*) DESC", column).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build group query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", table).Str("column", column).Msg("Error grouping rows")
		return nil, fmt.Errorf("error grouping %s by %s: %w", table, column, err)
	}
	defer rows.Close()

	out := []GroupCount{}
	for rows.Next() {
		var g GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// TopInstitutions ranks institutions by number of programs.
func (r *AnalyticsRepository) TopInstitutions(ctx context.Context, limit uint64) ([]dto.TopInstitution, error) {
	sql, args, err := r.sb.Select(
		"i.id", "i.name", "i.type",
		"(SELECT COUNT(*) FROM programs p WHERE p.institution_id = i.id) AS programs_count",
		"(SELECT COUNT(*) FROM saved_institutions s WHERE s.institution_id = i.id) AS saved_count",
	).
		From("institutions i").
		OrderBy("programs_count DESC", "i.created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build top institutions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying top institutions")
		return nil, fmt.Errorf("error querying top institutions: %w", err)
	}
	defer rows.Close()

	out := []dto.TopInstitution{}
	for rows.Next() {
		var t dto.TopInstitution
		if err := rows.Scan(&t.ID, &t.Name, &t.Type, &t.ProgramsCount, &t.SavedCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UserActivity lists the newest users with their record counts.
func (r *AnalyticsRepository) UserActivity(ctx context.Context, limit uint64) ([]dto.UserActivity, error) {
	sql, args, err := r.sb.Select(
		"u.id", "u.name", "u.role", "u.created_at",
		"(SELECT COUNT(*) FROM reports x WHERE x.user_id = u.id)",
		"(SELECT COUNT(*) FROM achievements x WHERE x.user_id = u.id)",
		"(SELECT COUNT(*) FROM exam_results x WHERE x.user_id = u.id)",
		"(SELECT COUNT(*) FROM saved_institutions x WHERE x.user_id = u.id)",
	).
		From("users u").
		OrderBy("u.created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user activity query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying user activity")
		return nil, fmt.Errorf("error querying user activity: %w", err)
	}
	defer rows.Close()

	out := []dto.UserActivity{}
	for rows.Next() {
		var a dto.UserActivity
		if err := rows.Scan(&a.ID, &a.Name, &a.Role, &a.CreatedAt,
			&a.ReportsCount, &a.AchievementsCount, &a.ExamResultsCount, &a.SavedInstitutionsCount); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Monthly counts rows of table per "YYYY-MM" month created since since.
// Months without rows are absent.
func (r *AnalyticsRepository) Monthly(ctx context.Context, table string, since time.Time) ([]dto.MonthCount, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	sql, args, err := r.sb.Select("to_char(date_trunc('month', created_at), 'YYYY-MM') AS month", "COUNT(*)").
		From(table).
		Where(squirrel.GtOrEq{"created_at": since}).
		GroupBy("month").
		OrderBy("month").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build monthly query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", table).Msg("Error querying monthly stats")
		return nil, fmt.Errorf("error querying monthly %s: %w", table, err)
	}
	defer rows.Close()

	out := []dto.MonthCount{}
	for rows.Next() {
		var m dto.MonthCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
