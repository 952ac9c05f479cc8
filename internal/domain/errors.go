package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an entity is absent or not in the state an
	// operation requires (e.g. stopping a timer that is no longer running).
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an operation would violate a uniqueness
	// rule, such as a second running timer or a duplicate assignment.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized is returned when the access chain denies an action.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInternal marks unexpected store failures.
	ErrInternal = errors.New("internal error")

	// ErrInvalidEntry is returned for a time entry that fits none of the
	// ongoing, manual or completed shapes.
	ErrInvalidEntry = errors.New("time entry has no valid duration shape")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// NewValidationError builds a ValidationError holding a single field issue.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for f := range v.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v.FieldErrors[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Add records a field level validation error.
func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// OrNil returns v as an error when it holds issues, otherwise nil.
func (v *ValidationError) OrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

// ErrorKind is a stable label for the error taxonomy.
type ErrorKind string

const (
	KindNone         ErrorKind = ""
	KindValidation   ErrorKind = "validation"
	KindConflict     ErrorKind = "conflict"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindInternal     ErrorKind = "internal"
)

// Kind maps sentinel and validation errors to their taxonomy label.
// Anything unrecognised is internal.
func Kind(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, ErrInvalidEntry):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindInternal
	}
}
