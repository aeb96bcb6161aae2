package models

import (
	"time"

	"github.com/google/uuid"
)

// Program is a study program of one institution. Exams is stored as a
// native TEXT[] column.
type Program struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name" example:"Программная инженерия"`
	Description   string          `json:"description" db:"description"`
	Faculty       string          `json:"faculty" db:"faculty"`
	Requirements  string          `json:"requirements" db:"requirements"`
	Exams         []string        `json:"exams" db:"exams"`
	InstitutionID uuid.UUID       `json:"institutionId" db:"institution_id"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
	Institution   *InstitutionRef `json:"institution,omitempty"`
}

// ProgramSummary is the short form listed under an institution.
type ProgramSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Faculty   string    `json:"faculty"`
	CreatedAt time.Time `json:"createdAt"`
}
