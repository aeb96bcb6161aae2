package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
)

// ChatRequest is one message typed into the assistant.
type ChatRequest struct {
	Message string `json:"message" binding:"required" example:"Какие вузы подойдут с моими баллами ЕГЭ?"`
}

type ChatResponse struct {
	Content  string `json:"content"`
	Category string `json:"category" example:"analysis"`
}

type StudentDashboard struct {
	ExamResults       []models.ExamResult       `json:"examResults"`
	Achievements      []models.Achievement      `json:"achievements"`
	Reports           []models.ReportSummary    `json:"reports"`
	SavedInstitutions []models.SavedInstitution `json:"savedInstitutions"`
}

// ParentDashboard has a nil Student when no student is linked to the parent.
type ParentDashboard struct {
	Student      *models.UserRef        `json:"student"`
	ExamResults  []models.ExamResult    `json:"examResults"`
	Achievements []models.Achievement   `json:"achievements"`
	Reports      []models.ReportSummary `json:"reports"`
}

type AnalyticsOverview struct {
	TotalUsers         int64 `json:"totalUsers"`
	TotalInstitutions  int64 `json:"totalInstitutions"`
	TotalPrograms      int64 `json:"totalPrograms"`
	TotalReports       int64 `json:"totalReports"`
	RecentUsers        int64 `json:"recentUsers"`
	RecentInstitutions int64 `json:"recentInstitutions"`
	RecentPrograms     int64 `json:"recentPrograms"`
	RecentReports      int64 `json:"recentReports"`
}

type RoleCount struct {
	Role  models.Role `json:"role"`
	Count int64       `json:"count"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type TopInstitution struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	ProgramsCount int64     `json:"programsCount"`
	SavedCount    int64     `json:"savedCount"`
}

type UserActivity struct {
	ID                     uuid.UUID   `json:"id"`
	Name                   string      `json:"name"`
	Role                   models.Role `json:"role"`
	CreatedAt              time.Time   `json:"createdAt"`
	ReportsCount           int64       `json:"reportsCount"`
	AchievementsCount      int64       `json:"achievementsCount"`
	ExamResultsCount       int64       `json:"examResultsCount"`
	SavedInstitutionsCount int64       `json:"savedInstitutionsCount"`
}

// MonthCount is the number of rows created in one "YYYY-MM" month.
type MonthCount struct {
	Month string `json:"month" example:"2026-03"`
	Count int64  `json:"count"`
}

type MonthlyStats struct {
	Users   []MonthCount `json:"users"`
	Reports []MonthCount `json:"reports"`
}

type AnalyticsResponse struct {
	Period             int               `json:"period" example:"30"`
	Overview           AnalyticsOverview `json:"overview"`
	UsersByRole        []RoleCount       `json:"usersByRole"`
	InstitutionsByType []TypeCount       `json:"institutionsByType"`
	TopInstitutions    []TopInstitution  `json:"topInstitutions"`
	UserActivity       []UserActivity    `json:"userActivity"`
	MonthlyStats       MonthlyStats      `json:"monthlyStats"`
}
