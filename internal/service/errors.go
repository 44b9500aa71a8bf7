package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BigPoppaG/CourseMe/internal/repository"
)

// Common domain errors. Handlers translate these into HTTP outcomes.
// ErrNotFound is shared with the data layer so errors.Is matches either way.
var (
	ErrNotFound      = repository.ErrNotFound
	ErrNotAuthorised = errors.New("not authorised")
)

// ValidationError carries one or more human-readable messages keyed by the
// offending input field. It is always recoverable by the caller, who
// re-renders the input for correction.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
