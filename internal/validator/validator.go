package validator

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/cinema-service/internal/models"
)

var loginIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,64}$`)

// Validator wraps go-playground/validator with the service's custom rules.
type Validator struct {
	validate  *validator.Validate
	languages map[string]bool
}

// New creates a validator. languages restricts the `language` tag; empty means en and he.
func New(languages ...string) *Validator {
	if len(languages) == 0 {
		languages = []string{"en", "he"}
	}
	v := &Validator{
		validate:  validator.New(),
		languages: make(map[string]bool, len(languages)),
	}
	for _, l := range languages {
		v.languages[strings.ToLower(l)] = true
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.registerRules()
	return v
}

// Validate runs struct validation and returns ValidationErrors or nil.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// Var validates a single value against a tag expression.
func (v *Validator) Var(field interface{}, tag string) error {
	if err := v.validate.Var(field, tag); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// SupportsLanguage reports whether the language code is configured.
func (v *Validator) SupportsLanguage(lang string) bool {
	return v.languages[strings.ToLower(lang)]
}

func (v *Validator) registerRules() {
	v.validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return models.Weekday(fl.Field().String()).IsValid()
	})

	v.validate.RegisterValidation("movie_status", func(fl validator.FieldLevel) bool {
		return models.MovieStatus(fl.Field().String()).IsValid()
	})

	v.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).IsValid()
	})

	v.validate.RegisterValidation("user_status", func(fl validator.FieldLevel) bool {
		return models.UserStatus(fl.Field().String()).IsValid()
	})

	v.validate.RegisterValidation("suggestion_status", func(fl validator.FieldLevel) bool {
		return models.SuggestionStatus(fl.Field().String()).IsValid()
	})

	v.validate.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return v.SupportsLanguage(fl.Field().String())
	})

	// Calendar date in YYYY-MM-DD
	v.validate.RegisterValidation("iso_date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(models.DateLayout, fl.Field().String())
		return err == nil
	})

	v.validate.RegisterValidation("login_id", func(fl validator.FieldLevel) bool {
		return loginIDPattern.MatchString(fl.Field().String())
	})

	v.validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
