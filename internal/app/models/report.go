package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is an admissions report written for one user.
type Report struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Content         string    `json:"content" db:"content"`
	Recommendations string    `json:"recommendations" db:"recommendations"`
	UserID          uuid.UUID `json:"userId" db:"user_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
	User            *UserRef  `json:"user,omitempty"`
}

type ReportSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}
