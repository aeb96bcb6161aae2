package services

import (
	"context"
	"time"

	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/app/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAnalyticsPeriod = 30
	topInstitutionsLimit   = 10
	userActivityLimit      = 20
	monthlyWindow          = 12
)

// AnalyticsStore is implemented by repositories.AnalyticsRepository.
type AnalyticsStore interface {
	Count(ctx context.Context, table string, since time.Time) (int64, error)
	CountBy(ctx context.Context, table, column string) ([]repositories.GroupCount, error)
	TopInstitutions(ctx context.Context, limit uint64) ([]dto.TopInstitution, error)
	UserActivity(ctx context.Context, limit uint64) ([]dto.UserActivity, error)
	Monthly(ctx context.Context, table string, since time.Time) ([]dto.MonthCount, error)
}

type AnalyticsService struct {
	store AnalyticsStore
	now   func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store, now: time.Now}
}

// Overview runs every aggregate of the admin dashboard concurrently. period
// is the "recent" window in days; values below 1 use the default.
func (s *AnalyticsService) Overview(ctx context.Context, period int) (*dto.AnalyticsResponse, error) {
	if period < 1 {
		period = DefaultAnalyticsPeriod
	}
	now := s.now()
	since := now.AddDate(0, 0, -period)
	monthStart := monthsBack(now, monthlyWindow-1)

	resp := &dto.AnalyticsResponse{Period: period}
	ov := &resp.Overview
	var (
		byRole, byType  []repositories.GroupCount
		usersPerMonth   []dto.MonthCount
		reportsPerMonth []dto.MonthCount
	)

	g, ctx := errgroup.WithContext(ctx)
	count := func(dst *int64, table string, since time.Time) {
		g.Go(func() (err error) {
			*dst, err = s.store.Count(ctx, table, since)
			return err
		})
	}
	count(&ov.TotalUsers, repositories.TableUsers, time.Time{})
	count(&ov.TotalInstitutions, repositories.TableInstitutions, time.Time{})
	count(&ov.TotalPrograms, repositories.TablePrograms, time.Time{})
	count(&ov.TotalReports, repositories.TableReports, time.Time{})
	count(&ov.RecentUsers, repositories.TableUsers, since)
	count(&ov.RecentInstitutions, repositories.TableInstitutions, since)
	count(&ov.RecentPrograms, repositories.TablePrograms, since)
	count(&ov.RecentReports, repositories.TableReports, since)

	g.Go(func() (err error) {
		byRole, err = s.store.CountBy(ctx, repositories.TableUsers, "role")
		return err
	})
	g.Go(func() (err error) {
		byType, err = s.store.CountBy(ctx, repositories.TableInstitutions, "type")
		return err
	})
	g.Go(func() (err error) {
		resp.TopInstitutions, err = s.store.TopInstitutions(ctx, topInstitutionsLimit)
		return err
	})
	g.Go(func() (err error) {
		resp.UserActivity, err = s.store.UserActivity(ctx, userActivityLimit)
		return err
	})
	g.Go(func() (err error) {
		usersPerMonth, err = s.store.Monthly(ctx, repositories.TableUsers, monthStart)
		return err
	})
	g.Go(func() (err error) {
		reportsPerMonth, err = s.store.Monthly(ctx, repositories.TableReports, monthStart)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.UsersByRole = make([]dto.RoleCount, 0, len(byRole))
	for _, gc := range byRole {
		resp.UsersByRole = append(resp.UsersByRole, dto.RoleCount{Role: models.Role(gc.Key), Count: gc.Count})
	}
	resp.InstitutionsByType = make([]dto.TypeCount, 0, len(byType))
	for _, gc := range byType {
		resp.InstitutionsByType = append(resp.InstitutionsByType, dto.TypeCount{Type: gc.Key, Count: gc.Count})
	}
	resp.TopInstitutions = orEmpty(resp.TopInstitutions)
	resp.UserActivity = orEmpty(resp.UserActivity)
	resp.MonthlyStats = dto.MonthlyStats{
		Users:   fillMonths(usersPerMonth, monthStart, monthlyWindow),
		Reports: fillMonths(reportsPerMonth, monthStart, monthlyWindow),
	}
	return resp, nil
}

// monthsBack returns the first instant of the month n months before t.
func monthsBack(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month()-time.Month(n), 1, 0, 0, 0, 0, t.Location())
}

// fillMonths returns one entry per month starting at start, with zero counts
// for months the query returned no rows for.
func fillMonths(counts []dto.MonthCount, start time.Time, months int) []dto.MonthCount {
	byMonth := make(map[string]int64, len(counts))
	for _, c := range counts {
		byMonth[c.Month] = c.Count
	}
	out := make([]dto.MonthCount, 0, months)
	for i := 0; i < months; i++ {
		m := start.AddDate(0, i, 0).Format("2006-01")
		out = append(out, dto.MonthCount{Month: m, Count: byMonth[m]})
	}
	return out
}
