package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/dberrors"
	"github.com/yigit/abiturient/internal/pkg/logger"
)

const userEmailKey = "users_email_key"

var userFilter = listFilter{
	SearchColumns: []string{"u.name", "u.email"},
	Filters:       map[string]string{"role": "u.role"},
}

// UserRepository handles user database operations
type UserRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db, sb: newBuilder()}
}

func (r *UserRepository) selectUsers() squirrel.SelectBuilder {
	return r.sb.Select(
		"u.id", "u.email", "u.name", "u.role", "u.avatar", "u.created_at", "u.updated_at",
		"(SELECT COUNT(*) FROM reports x WHERE x.user_id = u.id) AS reports_count",
		"(SELECT COUNT(*) FROM achievements x WHERE x.user_id = u.id) AS achievements_count",
		"(SELECT COUNT(*) FROM exam_results x WHERE x.user_id = u.id) AS exam_results_count",
		"(SELECT COUNT(*) FROM saved_institutions x WHERE x.user_id = u.id) AS saved_count",
	).From("users u")
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Role, &u.Avatar, &u.CreatedAt, &u.UpdatedAt,
		&u.Count.Reports, &u.Count.Achievements, &u.Count.ExamResults, &u.Count.SavedInstitutions,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// emailTaken maps a violation of the unique email constraint.
func emailTaken(err error) error {
	if dberrors.IsDuplicateConstraintError(err, userEmailKey) {
		return apperrors.ErrEmailAlreadyExists
	}
	return err
}

// NormalizeEmail is applied to every email before it is stored or looked up.
// Case is preserved; uniqueness is exact, as enforced by users_email_key.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func (r *UserRepository) listQuery(q dto.ListQuery) (squirrel.SelectBuilder, error) {
	sb, err := userFilter.apply(r.selectUsers(), q)
	if err != nil {
		return sb, err
	}
	return page(sb, "u.created_at DESC", q), nil
}

// List returns one page of users with their relation counts.
func (r *UserRepository) List(ctx context.Context, q dto.ListQuery) ([]models.User, int64, error) {
	query, err := r.listQuery(q)
	if err != nil {
		return nil, 0, err
	}
	total, err := userFilter.count(ctx, r.db, r.sb, "users u", q)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := query.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list users SQL")
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, 0, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	items := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user row: %w", err)
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}
	return items, total, nil
}

// GetByID retrieves a user with relation counts. The password hash is not loaded.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	sql, args, err := r.selectUsers().Where(squirrel.Eq{"u.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		logger.Error().Err(err).Str("userID", id.String()).Msg("Error scanning user row")
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

// GetCredentials loads the account behind email including its password hash.
func (r *UserRepository) GetCredentials(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := r.sb.Select("id", "email", "password", "name", "role", "avatar", "created_at", "updated_at").
		From("users").
		Where(squirrel.Eq{"email": NormalizeEmail(email)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get credentials query: %w", err)
	}

	u := &models.User{}
	err = r.db.QueryRow(ctx, sql, args...).
		Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		logger.Error().Err(err).Msg("Error scanning credentials row")
		return nil, fmt.Errorf("error getting user by email: %w", err)
	}
	return u, nil
}

// Create inserts u. u.Password must already be hashed.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	u.Email = NormalizeEmail(u.Email)

	sql, args, err := r.sb.Insert("users").
		Columns("id", "email", "password", "name", "role", "avatar").
		Values(u.ID, u.Email, u.Password, u.Name, u.Role, u.Avatar).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if mapped := emailTaken(err); mapped != err {
			return mapped
		}
		logger.Error().Err(err).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

// UpsertByEmail creates u or, when the email exists, overwrites its name,
// password and role. Used by the admin CLI.
func (r *UserRepository) UpsertByEmail(ctx context.Context, u *models.User) (created bool, err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)

	sql, args, err := r.sb.Insert("users").
		Columns("id", "email", "password", "name", "role").
		Values(u.ID, u.Email, u.Password, u.Name, u.Role).
		Suffix(`ON CONFLICT (email) DO UPDATE
			SET name = EXCLUDED.name, password = EXCLUDED.password, role = EXCLUDED.role, updated_at = now()
			RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build upsert user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &created); err != nil {
		logger.Error().Err(err).Str("email", u.Email).Msg("Error executing upsert user query")
		return false, fmt.Errorf("error upserting user: %w", err)
	}
	return created, nil
}

// Update applies set; an email already used by another account is a conflict.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, set map[string]interface{}) error {
	if email, ok := set["email"].(string); ok {
		set["email"] = NormalizeEmail(email)
	}
	return emailTaken(updateByID(ctx, r.db, r.sb, "users", id, set))
}

// Delete removes a user; reports, records, bookmarks and parent links cascade.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, r.sb, "users", id)
}
