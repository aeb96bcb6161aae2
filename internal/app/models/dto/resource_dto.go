package dto

import (
	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
	"github.com/yigit/abiturient/internal/pkg/patch"
)

// Create payloads validate presence only. Numeric fields go through patch.Int
// so that "250" and 250 are both accepted.

type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=ADMIN STUDENT PARENT"`
	Avatar   *string     `json:"avatar"`
}

type CreateInstitutionRequest struct {
	Name        string     `json:"name" binding:"required" example:"Test U"`
	Description string     `json:"description" binding:"required" example:"d"`
	Type        string     `json:"type" binding:"required" example:"Университет"`
	Direction   string     `json:"direction" binding:"required" example:"IT"`
	MinScore    *patch.Int `json:"minScore" binding:"required" swaggertype:"integer" example:"250"`
	Website     *string    `json:"website"`
	Logo        *string    `json:"logo"`
}

type CreateProgramRequest struct {
	Name          string    `json:"name" binding:"required"`
	Description   string    `json:"description" binding:"required"`
	Faculty       string    `json:"faculty" binding:"required"`
	Requirements  string    `json:"requirements" binding:"required"`
	Exams         []string  `json:"exams" binding:"required"`
	InstitutionID uuid.UUID `json:"institutionId" binding:"required" swaggertype:"string" format:"uuid"`
}

type CreateReportRequest struct {
	Title           string    `json:"title" binding:"required"`
	Content         string    `json:"content" binding:"required"`
	Recommendations string    `json:"recommendations" binding:"required"`
	UserID          uuid.UUID `json:"userId" binding:"required" swaggertype:"string" format:"uuid"`
}

// Update payloads apply every key present in the body, including "" and 0.

type UpdateUserRequest struct {
	Name     patch.Field[string]      `json:"name" swaggertype:"string"`
	Email    patch.Field[string]      `json:"email" swaggertype:"string"`
	Password patch.Field[string]      `json:"password" swaggertype:"string"`
	Role     patch.Field[models.Role] `json:"role" swaggertype:"string"`
	Avatar   patch.Field[string]      `json:"avatar" swaggertype:"string"`
}

// Validate rejects an explicit null on a non-nullable field.
func (r *UpdateUserRequest) Validate() error {
	if err := notNull(map[string]bool{
		"name":     r.Name.Null,
		"email":    r.Email.Null,
		"password": r.Password.Null,
		"role":     r.Role.Null,
	}); err != nil {
		return err
	}
	if r.Email.Set && validate.Var(r.Email.Value, "required,email") != nil {
		return apperrors.NewValidationError("email", "email must be a valid email address")
	}
	if r.Password.Set && len(r.Password.Value) < 6 {
		return apperrors.NewValidationError("password", "password must be at least 6 characters")
	}
	if r.Role.Set && !r.Role.Value.Valid() {
		return apperrors.NewValidationError("role", "role must be one of ADMIN, STUDENT, PARENT")
	}
	return nil
}

type UpdateInstitutionRequest struct {
	Name        patch.Field[string]    `json:"name" swaggertype:"string"`
	Description patch.Field[string]    `json:"description" swaggertype:"string"`
	Type        patch.Field[string]    `json:"type" swaggertype:"string"`
	Direction   patch.Field[string]    `json:"direction" swaggertype:"string"`
	MinScore    patch.Field[patch.Int] `json:"minScore" swaggertype:"integer"`
	Website     patch.Field[string]    `json:"website" swaggertype:"string"`
	Logo        patch.Field[string]    `json:"logo" swaggertype:"string"`
}

// Validate rejects an explicit null on a non-nullable field.
func (r *UpdateInstitutionRequest) Validate() error {
	return notNull(map[string]bool{
		"name":        r.Name.Null,
		"description": r.Description.Null,
		"type":        r.Type.Null,
		"direction":   r.Direction.Null,
		"minScore":    r.MinScore.Null,
	})
}

type UpdateProgramRequest struct {
	Name          patch.Field[string]    `json:"name" swaggertype:"string"`
	Description   patch.Field[string]    `json:"description" swaggertype:"string"`
	Faculty       patch.Field[string]    `json:"faculty" swaggertype:"string"`
	Requirements  patch.Field[string]    `json:"requirements" swaggertype:"string"`
	Exams         patch.Field[[]string]  `json:"exams" swaggertype:"array,string"`
	InstitutionID patch.Field[uuid.UUID] `json:"institutionId" swaggertype:"string"`
}

// Validate rejects an explicit null on a non-nullable field.
func (r *UpdateProgramRequest) Validate() error {
	return notNull(map[string]bool{
		"name":          r.Name.Null,
		"description":   r.Description.Null,
		"faculty":       r.Faculty.Null,
		"requirements":  r.Requirements.Null,
		"exams":         r.Exams.Null,
		"institutionId": r.InstitutionID.Null,
	})
}

type UpdateReportRequest struct {
	Title           patch.Field[string]    `json:"title" swaggertype:"string"`
	Content         patch.Field[string]    `json:"content" swaggertype:"string"`
	Recommendations patch.Field[string]    `json:"recommendations" swaggertype:"string"`
	UserID          patch.Field[uuid.UUID] `json:"userId" swaggertype:"string"`
}

// Validate rejects an explicit null on a non-nullable field.
func (r *UpdateReportRequest) Validate() error {
	return notNull(map[string]bool{
		"title":           r.Title.Null,
		"content":         r.Content.Null,
		"recommendations": r.Recommendations.Null,
		"userId":          r.UserID.Null,
	})
}
