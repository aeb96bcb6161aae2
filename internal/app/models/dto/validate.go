package dto

import (
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
)

var validate = validator.New()

// notNull rejects explicit nulls on columns that cannot hold NULL. Fields are
// checked in name order so the reported field is stable.
func notNull(nulls map[string]bool) error {
	names := make([]string, 0, len(nulls))
	for name, isNull := range nulls {
		if isNull {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	sort.Strings(names)
	return apperrors.NewValidationError(names[0], names[0]+" cannot be null")
}
