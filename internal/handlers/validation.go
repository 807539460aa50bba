package handlers

import (
	"errors"
	"fmt"

	"github.com/explorepe/explorepe-api/pkg/slug"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RegisterValidators adds the custom binding rules used by request models.
// Call once at startup, before any request is bound.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("slugname", validateSlugName)
}

// validateSlugName accepts names that normalize to a non-empty slug
func validateSlugName(fl validator.FieldLevel) bool {
	return slug.Normalize(fl.Field().String()) != ""
}

// ParseValidationErrors converts validator errors to user-friendly format
func ParseValidationErrors(err error) []ValidationError {
	var out []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			out = append(out, ValidationError{
				Field:   fieldError.Field(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return out
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fe.Field() + " es requerido"
	case "email":
		return "Formato de email inválido"
	case "min":
		return fe.Field() + " debe tener al menos " + fe.Param() + " caracteres"
	case "max":
		return fe.Field() + " no puede superar " + fe.Param() + " caracteres"
	case "oneof":
		return fe.Field() + " debe ser uno de: " + fe.Param()
	case "latitude", "longitude":
		return fe.Field() + " no es una coordenada válida"
	case "slugname":
		return "El nombre debe contener letras o números"
	case "url":
		return "Formato de URL inválido"
	default:
		return fe.Field() + " no es válido"
	}
}
