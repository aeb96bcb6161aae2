package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a row of the users table.
type User struct {
	ID        uuid.UUID  `json:"id" db:"id" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	Email     string     `json:"email" db:"email" example:"student@example.com"`
	Password  string     `json:"-" db:"password"` // bcrypt hash
	Name      string     `json:"name" db:"name" example:"Анна Петрова"`
	Role      Role       `json:"role" db:"role" example:"STUDENT"`
	Avatar    *string    `json:"avatar" db:"avatar"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
	Count     UserCounts `json:"_count"`
}

// UserCounts are the relation counts returned with a user.
type UserCounts struct {
	Reports           int64 `json:"reports"`
	Achievements      int64 `json:"achievements"`
	ExamResults       int64 `json:"examResults"`
	SavedInstitutions int64 `json:"savedInstitutions"`
}

// UserDetail is a user with its most recent related records.
type UserDetail struct {
	User
	Reports      []ReportSummary `json:"reports"`
	Achievements []Achievement   `json:"achievements"`
	ExamResults  []ExamResult    `json:"examResults"`
}

// UserRef is the owner summary embedded in reports.
type UserRef struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
	Avatar *string   `json:"avatar,omitempty"`
}
