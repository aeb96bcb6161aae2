package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
)

// dashboardReports is how many of the latest reports a dashboard shows.
const dashboardReports = 10

// DashboardService backs the student and parent dashboards.
type DashboardService struct {
	records StudentRecordStore
	saved   SavedInstitutionStore
	parents ParentLinkStore
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(records StudentRecordStore, saved SavedInstitutionStore, parents ParentLinkStore) *DashboardService {
	return &DashboardService{records: records, saved: saved, parents: parents}
}

// Student returns the dashboard of a student: exam results, achievements and
// recent reports.
func (s *DashboardService) Student(ctx context.Context, userID uuid.UUID) (*dto.StudentDashboard, error) {
	exams, achievements, reports, err := s.studentRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	saved, err := s.saved.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.StudentDashboard{
		ExamResults:       exams,
		Achievements:      achievements,
		Reports:           reports,
		SavedInstitutions: orEmpty(saved),
	}, nil
}

// Parent shows the linked student's records. A parent without a linked
// student gets an empty dashboard with a nil Student.
func (s *DashboardService) Parent(ctx context.Context, parentID uuid.UUID) (*dto.ParentDashboard, error) {
	dash := &dto.ParentDashboard{
		ExamResults:  []models.ExamResult{},
		Achievements: []models.Achievement{},
		Reports:      []models.ReportSummary{},
	}

	student, err := s.parents.StudentOf(ctx, parentID)
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		return dash, nil
	}
	if err != nil {
		return nil, err
	}

	dash.Student = student
	dash.ExamResults, dash.Achievements, dash.Reports, err = s.studentRecords(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	return dash, nil
}

func (s *DashboardService) studentRecords(ctx context.Context, userID uuid.UUID) ([]models.ExamResult, []models.Achievement, []models.ReportSummary, error) {
	exams, err := s.records.ExamResults(ctx, userID, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	achievements, err := s.records.Achievements(ctx, userID, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	reports, err := s.records.Reports(ctx, userID, dashboardReports)
	if err != nil {
		return nil, nil, nil, err
	}
	return orEmpty(exams), orEmpty(achievements), orEmpty(reports), nil
}

// SavedInstitutions lists the institutions bookmarked by userID
func (s *DashboardService) SavedInstitutions(ctx context.Context, userID uuid.UUID) ([]models.SavedInstitution, error) {
	saved, err := s.saved.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return orEmpty(saved), nil
}

// SaveInstitution bookmarks an institution; saving twice is a no-op.
func (s *DashboardService) SaveInstitution(ctx context.Context, userID, institutionID uuid.UUID) error {
	return s.saved.Save(ctx, userID, institutionID)
}

// RemoveInstitution drops a bookmark
func (s *DashboardService) RemoveInstitution(ctx context.Context, userID, institutionID uuid.UUID) error {
	return s.saved.Remove(ctx, userID, institutionID)
}
