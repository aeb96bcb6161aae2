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

// StudentRecordRepository reads and writes the records owned by one user:
// exam results, achievements and report summaries.
type StudentRecordRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewStudentRecordRepository creates a new StudentRecordRepository
func NewStudentRecordRepository(db DBTX) *StudentRecordRepository {
	return &StudentRecordRepository{db: db, sb: newBuilder()}
}

// limitRows applies limit when it is positive.
func limitRows(sb squirrel.SelectBuilder, limit uint64) squirrel.SelectBuilder {
	if limit > 0 {
		return sb.Limit(limit)
	}
	return sb
}

// ExamResults lists a user's results, newest exam first. limit 0 means all.
func (r *StudentRecordRepository) ExamResults(ctx context.Context, userID uuid.UUID, limit uint64) ([]models.ExamResult, error) {
	sql, args, err := limitRows(r.sb.Select("id", "subject", "score", "exam_type", "date", "user_id", "created_at").
		From("exam_results").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC", "created_at DESC"), limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build exam results query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error querying exam results")
		return nil, fmt.Errorf("error querying exam results: %w", err)
	}
	defer rows.Close()

	out := []models.ExamResult{}
	for rows.Next() {
		var e models.ExamResult
		if err := rows.Scan(&e.ID, &e.Subject, &e.Score, &e.ExamType, &e.Date, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning exam result row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Achievements lists a user's achievements, newest first. limit 0 means all.
func (r *StudentRecordRepository) Achievements(ctx context.Context, userID uuid.UUID, limit uint64) ([]models.Achievement, error) {
	sql, args, err := limitRows(r.sb.Select("id", "title", "description", "type", "user_id", "created_at").
		From("achievements").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC"), limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build achievements query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error querying achievements")
		return nil, fmt.Errorf("error querying achievements: %w", err)
	}
	defer rows.Close()

	out := []models.Achievement{}
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Type, &a.UserID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning achievement row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Reports lists summaries of a user's reports, newest first. limit 0 means all.
func (r *StudentRecordRepository) Reports(ctx context.Context, userID uuid.UUID, limit uint64) ([]models.ReportSummary, error) {
	sql, args, err := limitRows(r.sb.Select("id", "title", "created_at").
		From("reports").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC"), limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build reports query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error querying reports")
		return nil, fmt.Errorf("error querying reports: %w", err)
	}
	defer rows.Close()

	out := []models.ReportSummary{}
	for rows.Next() {
		var s models.ReportSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning report row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// AddExamResult stores e for its user.
func (r *StudentRecordRepository) AddExamResult(ctx context.Context, e *models.ExamResult) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	sql, args, err := r.sb.Insert("exam_results").
		Columns("id", "subject", "score", "exam_type", "date", "user_id").
		Values(e.ID, e.Subject, e.Score, e.ExamType, e.Date, e.UserID).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add exam result query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&e.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err, "") {
			return apperrors.NewResourceNotFoundError("User not found")
		}
		return fmt.Errorf("error adding exam result: %w", err)
	}
	return nil
}

// AddAchievement stores a for its user.
func (r *StudentRecordRepository) AddAchievement(ctx context.Context, a *models.Achievement) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	sql, args, err := r.sb.Insert("achievements").
		Columns("id", "title", "description", "type", "user_id").
		Values(a.ID, a.Title, a.Description, a.Type, a.UserID).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build add achievement query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.CreatedAt); err != nil {
		if dberrors.IsForeignKeyViolation(err, "") {
			return apperrors.NewResourceNotFoundError("User not found")
		}
		return fmt.Errorf("error adding achievement: %w", err)
	}
	return nil
}

// CountExamResults is used by the seeder to stay idempotent.
func (r *StudentRecordRepository) CountExamResults(ctx context.Context, userID uuid.UUID) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("exam_results").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	err = r.db.QueryRow(ctx, sql, args...).Scan(&n)
	return n, err
}
