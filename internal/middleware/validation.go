package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so clients can map errors to inputs.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// ValidateRequest validates a struct against its validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format. It
// returns nil for any other error.
func FormatValidationErrors(err error) []ValidationError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	out := make([]ValidationError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, ValidationError{
			Field:   e.Field(),
			Message: getErrorMessage(e),
		})
	}
	return out
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "url":
		return "Must be an absolute URL"
	case "uri":
		return "Must be a URL or an absolute path"
	case "uuid":
		return "Must be a UUID"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	default:
		return "Invalid value"
	}
}
