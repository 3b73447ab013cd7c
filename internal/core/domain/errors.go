package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateUsername  = errors.New("username already exists")

	// Integrity and infrastructure failures. These are never shown to clients
	// verbatim.
	ErrRoleAssignmentMissing = errors.New("role assignment missing")
	ErrRoleNotFound          = errors.New("role not found")
	ErrAccountCreationFailed = errors.New("account creation failed")
)

// FieldError describes a single rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level failure of a rejected request.
// It matches ErrValidationFailed under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidationFailed.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ErrorKind returns a stable label for err, suitable for metrics and the
// audit trail. Unknown errors are reported as "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, ErrDuplicateUsername):
		return "duplicate_username"
	case errors.Is(err, ErrRoleAssignmentMissing):
		return "role_assignment_missing"
	case errors.Is(err, ErrRoleNotFound):
		return "role_not_found"
	case errors.Is(err, ErrAccountCreationFailed):
		return "account_creation_failed"
	default:
		return "internal"
	}
}
