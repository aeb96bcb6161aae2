package models

import (
	"time"

	"github.com/google/uuid"
)

// Institution is a university or college offering programs.
type Institution struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	Name        string            `json:"name" db:"name" example:"МФТИ"`
	Description string            `json:"description" db:"description"`
	Type        string            `json:"type" db:"type" example:"UNIVERSITY"`
	Direction   string            `json:"direction" db:"direction" example:"Технические науки"`
	MinScore    int               `json:"minScore" db:"min_score" example:"290"`
	Website     *string           `json:"website" db:"website" example:"https://mipt.ru"`
	Logo        *string           `json:"logo" db:"logo"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
	Count       InstitutionCounts `json:"_count"`
}

type InstitutionCounts struct {
	Programs int64 `json:"programs"`
	SavedBy  int64 `json:"savedBy"`
}

// InstitutionDetail adds the most recent programs.
type InstitutionDetail struct {
	Institution
	Programs []ProgramSummary `json:"programs"`
}

// InstitutionRef is the parent summary embedded in programs.
type InstitutionRef struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Website *string   `json:"website,omitempty"`
}
