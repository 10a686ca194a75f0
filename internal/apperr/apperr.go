// Package apperr defines the error kinds surfaced by the planner core.
// Callers test the kind with errors.Is and read details with errors.As.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrDependencyNotSatisfied = errors.New("dependency not satisfied")
	ErrInvalidState           = errors.New("invalid state")
	ErrHasDependents          = errors.New("has dependents")
	ErrInstantiationFailed    = errors.New("instantiation failed")
	ErrInternal               = errors.New("internal error")
)

// Error carries a kind plus the detail a caller needs to build an
// actionable message.
type Error struct {
	Kind    error
	Msg     string
	Field   string   // offending field, when one applies
	Details []string // e.g. unmet dependencies or blocking dependents
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if len(e.Details) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Details, ", "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

func newf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input on field.
func Validation(field, format string, args ...any) *Error {
	e := newf(ErrValidation, format, args...)
	e.Field = field
	return e
}

func NotFound(format string, args ...any) *Error { return newf(ErrNotFound, format, args...) }

func Forbidden(format string, args ...any) *Error { return newf(ErrForbidden, format, args...) }

// ForbiddenField reports an attempt to change a field the actor may not touch.
func ForbiddenField(field string) *Error {
	e := newf(ErrForbidden, "not allowed to change %s", field)
	e.Field = field
	return e
}

func InvalidState(format string, args ...any) *Error { return newf(ErrInvalidState, format, args...) }

// DependencyNotSatisfied lists the dependencies still blocking a start.
func DependencyNotSatisfied(unmet []string) *Error {
	e := newf(ErrDependencyNotSatisfied, "%d dependencies not completed", len(unmet))
	e.Details = unmet
	return e
}

// HasDependents lists the tasks still depending on the one being removed.
func HasDependents(dependents []string) *Error {
	e := newf(ErrHasDependents, "%d tasks depend on this task", len(dependents))
	e.Details = dependents
	return e
}

// InstantiationFailed is the single opaque error for a rolled-back clone.
func InstantiationFailed() *Error {
	return newf(ErrInstantiationFailed, "the event was not created; no changes were saved")
}

// Internal is the opaque error for persistence failures outside instantiation.
func Internal() *Error { return newf(ErrInternal, "the operation could not be completed") }

// Kind returns the kind of err, or ErrInternal when err carries none.
func Kind(err error) error {
	for _, k := range []error{
		ErrValidation, ErrNotFound, ErrForbidden, ErrDependencyNotSatisfied,
		ErrInvalidState, ErrHasDependents, ErrInstantiationFailed, ErrInternal,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}
