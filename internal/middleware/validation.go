package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/abiturient/internal/app/models/dto"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
)

// BindJSON decodes the request body into obj and runs its binding rules.
// Failures come back as apperrors validation or bad request errors.
func BindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]dto.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, dto.FieldError{Field: jsonName(fe), Message: formatValidationError(fe)})
		}
		return &apperrors.CustomError{
			Err:     apperrors.ErrValidationFailed,
			Message: fields[0].Message,
			Details: map[string]interface{}{"field": fields[0].Field, "fields": fields},
		}
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperrors.NewBadRequestError("Request body is required")
	case errors.As(err, &typeErr):
		return apperrors.NewValidationError(typeErr.Field, typeErr.Field+" has an invalid type")
	default:
		return apperrors.NewBadRequestError("Invalid request body: " + err.Error())
	}
}

// jsonName turns the validator namespace into the lowerCamel JSON key used by
// the DTOs ("CreateProgramRequest.InstitutionID" => "institutionId").
func jsonName(e validator.FieldError) string {
	name := e.Field()
	if name == "" {
		return name
	}
	if strings.HasSuffix(name, "ID") {
		name = strings.TrimSuffix(name, "ID") + "Id"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := jsonName(e)
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param() + " characters"
	case "max":
		return field + " must be at most " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " validation failed: " + e.Tag()
	}
}
