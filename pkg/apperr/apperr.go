// Package apperr defines the error taxonomy shared by every module.
package apperr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error carries a machine-readable code alongside the human message.
type Error struct {
	Code    string
	Message string
	Err     error
}

const (
	CodeValidation         = "validation"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodePreconditionFailed = "precondition_failed"
	CodeIntegrityViolation = "integrity_violation"
	CodeExternal           = "external"
	CodeInternal           = "internal"
)

// Sentinel errors; match with errors.Is / the Is* helpers below.
var (
	ErrValidation         = &Error{Code: CodeValidation, Message: "invalid input"}
	ErrNotFound           = &Error{Code: CodeNotFound, Message: "resource not found"}
	ErrConflict           = &Error{Code: CodeConflict, Message: "conflicting state"}
	ErrPreconditionFailed = &Error{Code: CodePreconditionFailed, Message: "business precondition failed"}
	ErrIntegrityViolation = &Error{Code: CodeIntegrityViolation, Message: "uniqueness violated"}
	ErrExternal           = &Error{Code: CodeExternal, Message: "external collaborator failed"}
	ErrInternal           = &Error{Code: CodeInternal, Message: "internal error"}
)

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so wrapped errors compare
// against the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return errors.Is(e.Err, target)
	}
	return e.Code == t.Code
}

// New wraps a sentinel with a formatted message.
func New(sentinel *Error, format string, args ...any) error {
	return &Error{
		Code:    sentinel.Code,
		Message: fmt.Sprintf(format, args...),
		Err:     errors.Newf(format, args...),
	}
}

// Wrap attaches the taxonomy code to an underlying error.
func Wrap(err error, sentinel *Error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    sentinel.Code,
		Message: msg,
		Err:     errors.Wrap(err, msg),
	}
}

func Is(err, target error) bool { return errors.Is(err, target) }

func IsValidation(err error) bool         { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool           { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool           { return errors.Is(err, ErrConflict) }
func IsPreconditionFailed(err error) bool { return errors.Is(err, ErrPreconditionFailed) }
func IsIntegrityViolation(err error) bool { return errors.Is(err, ErrIntegrityViolation) }
func IsExternal(err error) bool           { return errors.Is(err, ErrExternal) }
func IsInternal(err error) bool           { return errors.Is(err, ErrInternal) }

// Code extracts the taxonomy code, defaulting to internal.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
