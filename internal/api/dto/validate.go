package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/pqrs-service/pkg/util"
)

var validate = validator.New()

// Validate runs struct tag validation and converts failures into a
// field-keyed validation error.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("invalid request payload", nil)
	}

	fields := make(map[string]any, len(validationErrs))
	for _, fieldErr := range validationErrs {
		fields[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
	}
	return apperrors.NewValidationError("request validation failed", fields)
}
