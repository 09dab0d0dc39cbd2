package v1

import (
	"errors"
	"strings"

	"resume-review-backend/pkg/apperror"
	"resume-review-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// bindError turns a gin binding failure into a field-level validation error.
func bindError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.BadRequest("Invalid request body")
	}
	appErr := apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; "))
	appErr.Fields = validation.FieldErrors(err)
	return appErr
}
