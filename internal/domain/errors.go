package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid session")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrUpstream           = errors.New("upstream service unavailable")
)

// FieldError describes one invalid input field. Path is the JSON path to
// the offending value, e.g. ["favoriteBook", "title"].
type FieldError struct {
	Code     string   `json:"code"`
	Expected string   `json:"expected,omitempty"`
	Received string   `json:"received,omitempty"`
	Message  string   `json:"message"`
	Path     []string `json:"path"`
}

type ValidationError struct {
	Message string
	Errors  []FieldError
}

func NewValidationError(errs ...FieldError) *ValidationError {
	return &ValidationError{Message: "Validation failed", Errors: errs}
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, strings.Join(fe.Path, ".")+": "+fe.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
