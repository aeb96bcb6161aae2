package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	appModels "github.com/yigit/abiturient/internal/app/models"
	appRepos "github.com/yigit/abiturient/internal/app/repositories"
	"github.com/yigit/abiturient/internal/db"
	"github.com/yigit/abiturient/internal/pkg/auth"
)

// DemoPassword is the password of the seeded student and parent accounts.
const DemoPassword = "password123"

// Options selects the administrator account created by the seeder.
type Options struct {
	AdminEmail    string
	AdminPassword string
}

// Result counts what a run inserted.
type Result struct {
	Users        int
	Institutions int
	Programs     int
	StudentData  bool
}

// CreateDefaultData inserts the demo accounts and catalog in one transaction.
// Rows that already exist are left untouched, so running it again is a no-op.
func CreateDefaultData(ctx context.Context, pool *pgxpool.Pool, opts Options, lgr zerolog.Logger) (*Result, error) {
	lgr.Info().Msg("Checking/Creating default data...")

	demoHash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}
	adminHash := demoHash
	if opts.AdminPassword != DemoPassword {
		if adminHash, err = auth.HashPassword(opts.AdminPassword); err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	}

	res := &Result{}
	err = db.WithTransaction(ctx, pool, func(ctx context.Context, tx pgx.Tx) error {
		s := &seeder{
			users:        appRepos.NewUserRepository(tx),
			institutions: appRepos.NewInstitutionRepository(tx),
			programs:     appRepos.NewProgramRepository(tx),
			reports:      appRepos.NewReportRepository(tx),
			records:      appRepos.NewStudentRecordRepository(tx),
			parents:      appRepos.NewParentLinkRepository(tx),
			res:          res,
			lgr:          lgr,
		}
		return s.run(ctx, opts, adminHash, demoHash)
	})
	if err != nil {
		lgr.Error().Err(err).Msg("Seeding failed, transaction rolled back")
		return nil, err
	}

	lgr.Info().
		Int("users", res.Users).
		Int("institutions", res.Institutions).
		Int("programs", res.Programs).
		Bool("studentData", res.StudentData).
		Msg("Default data ready")
	return res, nil
}

type seeder struct {
	users        *appRepos.UserRepository
	institutions *appRepos.InstitutionRepository
	programs     *appRepos.ProgramRepository
	reports      *appRepos.ReportRepository
	records      *appRepos.StudentRecordRepository
	parents      *appRepos.ParentLinkRepository
	res          *Result
	lgr          zerolog.Logger
}

func (s *seeder) run(ctx context.Context, opts Options, adminHash, demoHash string) error {
	if opts.AdminEmail == "" {
		s.lgr.Warn().Msg("No admin email configured, skipping admin account")
	} else {
		admin := userFixture{Email: opts.AdminEmail, Name: "Администратор", Role: appModels.RoleAdmin}
		if _, err := s.ensureUser(ctx, admin, adminHash); err != nil {
			return err
		}
	}
	student, err := s.ensureUser(ctx, studentFixture, demoHash)
	if err != nil {
		return err
	}
	parent, err := s.ensureUser(ctx, parentFixture, demoHash)
	if err != nil {
		return err
	}
	if err := s.parents.Link(ctx, parent.ID, student.ID); err != nil {
		return err
	}

	if err := s.ensureCatalog(ctx); err != nil {
		return err
	}
	return s.ensureStudentData(ctx, student)
}

// ensureUser returns the account with f.Email, creating it when missing.
func (s *seeder) ensureUser(ctx context.Context, f userFixture, hash string) (*appModels.User, error) {
	existing, err := s.users.GetCredentials(ctx, f.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, appRepos.ErrNotFound) {
		return nil, err
	}

	u := &appModels.User{Email: f.Email, Password: hash, Name: f.Name, Role: f.Role}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("seed user %s: %w", f.Email, err)
	}
	s.res.Users++
	s.lgr.Info().Str("email", f.Email).Str("role", string(f.Role)).Msg("Seeded user")
	return u, nil
}

// ensureCatalog creates missing institutions. Programs are only added to
// institutions created by this run.
func (s *seeder) ensureCatalog(ctx context.Context) error {
	created := make(map[string]*appModels.Institution)
	for _, f := range institutionFixtures {
		n, err := s.institutions.CountByName(ctx, f.Name)
		if err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		inst := &appModels.Institution{
			Name:        f.Name,
			Description: f.Description,
			Type:        f.Type,
			Direction:   f.Direction,
			MinScore:    f.MinScore,
			Website:     strPtr(f.Website),
		}
		if err := s.institutions.Create(ctx, inst); err != nil {
			return fmt.Errorf("seed institution %s: %w", f.Name, err)
		}
		created[f.Name] = inst
		s.res.Institutions++
	}

	for _, f := range programFixtures {
		inst, ok := created[f.Institution]
		if !ok {
			continue
		}
		p := &appModels.Program{
			Name:          f.Name,
			Description:   f.Description,
			Faculty:       f.Faculty,
			Requirements:  f.Requirements,
			Exams:         f.Exams,
			InstitutionID: inst.ID,
		}
		if err := s.programs.Create(ctx, p); err != nil {
			return fmt.Errorf("seed program %s: %w", f.Name, err)
		}
		s.res.Programs++
	}
	return nil
}

// ensureStudentData adds exam results, achievements and a report to a
// student that has no exam results yet.
func (s *seeder) ensureStudentData(ctx context.Context, student *appModels.User) error {
	n, err := s.records.CountExamResults(ctx, student.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	now := time.Now()
	for _, e := range examFixtures {
		e.UserID = student.ID
		e.Date = now
		if err := s.records.AddExamResult(ctx, &e); err != nil {
			return err
		}
	}
	for _, a := range achievementFixtures {
		a.UserID = student.ID
		if err := s.records.AddAchievement(ctx, &a); err != nil {
			return err
		}
	}
	rep := reportFixture
	rep.UserID = student.ID
	if err := s.reports.Create(ctx, &rep); err != nil {
		return err
	}

	s.res.StudentData = true
	return nil
}
