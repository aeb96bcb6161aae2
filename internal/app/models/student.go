package models

import (
	"time"

	"github.com/google/uuid"
)

// Achievement is an olympiad win, certificate or similar record of a student.
type Achievement struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description *string         `json:"description,omitempty" db:"description"`
	Type        AchievementType `json:"type" db:"type"`
	UserID      uuid.UUID       `json:"-" db:"user_id"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// ExamResult is one subject score of a state exam.
type ExamResult struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Subject   string    `json:"subject" db:"subject"`
	Score     int       `json:"score" db:"score"`
	ExamType  ExamType  `json:"examType" db:"exam_type"`
	Date      time.Time `json:"date" db:"date"`
	UserID    uuid.UUID `json:"-" db:"user_id"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// SavedInstitution is a student's bookmark of an institution.
type SavedInstitution struct {
	Institution Institution `json:"institution"`
	SavedAt     time.Time   `json:"savedAt"`
}
