package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one rejected field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// NewFieldError builds a single-field ValidationErrors for checks done outside struct tags.
func NewFieldError(field, rule, message string, value interface{}) ValidationErrors {
	return ValidationErrors{{Field: field, Rule: rule, Message: message, Value: value}}
}

// ToValidationErrors converts go-playground errors into ValidationErrors.
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var already ValidationErrors
	if errors.As(err, &already) {
		return already
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "weekday":
		return "must be one of Mon, Tue, Wed, Thu, Fri, Sat, Sun"
	case "movie_status":
		return "must be wishlist or downloaded"
	case "user_role":
		return "must be admin, teacher, student or user"
	case "user_status":
		return "must be pending, approved or rejected"
	case "suggestion_status":
		return "must be pending, approved or rejected"
	case "language":
		return "must be a supported language"
	case "iso_date":
		return "must be a date in YYYY-MM-DD format"
	case "login_id":
		return "must be 3-64 letters, digits, dots, dashes or underscores"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", fe.Tag())
	}
}
