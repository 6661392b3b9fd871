package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/cinema-service/internal/validator"
)

// Generic errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrUpstream         = errors.New("upstream service failed")
	ErrUnavailable      = errors.New("service unavailable")
)

// Account errors
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrAccountRejected    = fmt.Errorf("%w: account was rejected", ErrForbidden)
	ErrEmailTaken         = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrLoginIDTaken       = fmt.Errorf("%w: login id already taken", ErrConflict)
	ErrUserNotFound       = fmt.Errorf("%w: user", ErrNotFound)
)

// Domain errors
var (
	ErrMovieNotFound        = fmt.Errorf("%w: movie", ErrNotFound)
	ErrDuplicateTitle       = fmt.Errorf("%w: a movie with this title already exists", ErrConflict)
	ErrScheduleNotFound     = fmt.Errorf("%w: schedule entry", ErrNotFound)
	ErrClassNotFound        = fmt.Errorf("%w: class", ErrNotFound)
	ErrDuplicateClass       = fmt.Errorf("%w: a class with this name already exists", ErrConflict)
	ErrSuggestionNotFound   = fmt.Errorf("%w: suggestion", ErrNotFound)
	ErrAttendanceNotFound   = fmt.Errorf("%w: attendance record", ErrNotFound)
	ErrGradeNotFound        = fmt.Errorf("%w: grade report", ErrNotFound)
	ErrPreRegisteredExists  = fmt.Errorf("%w: email already pre-registered", ErrConflict)
	ErrPreRegisteredMissing = fmt.Errorf("%w: pre-registered email", ErrNotFound)
	ErrAlreadyMigrated      = fmt.Errorf("%w: legacy data was already imported", ErrConflict)
)

// ValidationErrors is returned when request validation fails.
type ValidationErrors = validator.ValidationErrors

// PermissionError describes a denied action on a resource.
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %s: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

// BusinessRuleError is a request that is well formed but breaks a domain rule.
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

// validationFailed wraps validator output so both errors.Is(ErrValidationFailed)
// and errors.As(ValidationErrors) match.
func validationFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrValidationFailed, err)
}

func fieldError(field, rule, message string, value interface{}) error {
	return validationFailed(validator.NewFieldError(field, rule, message, value))
}
