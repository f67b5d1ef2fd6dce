package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Scan errors. InvalidCriterion and EmptyInput are fatal and raised before any
// document is opened; ParseFailure and ExtractionAnomaly stay inside their document
// or page and only show up in report counters.
var (
	ErrInvalidCriterion  = errors.New("invalid criterion")
	ErrEmptyInput        = errors.New("empty input")
	ErrParseFailure      = errors.New("parse failure")
	ErrExtractionAnomaly = errors.New("extraction anomaly")
)

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrValidation   = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ParseFailuref wraps cause as a document-level parse failure.
func ParseFailuref(cause error, format string, args ...any) error {
	return NewAppError("PARSE_FAILURE", fmt.Sprintf(format, args...), errors.Join(ErrParseFailure, cause))
}

// IsFatal reports whether err must abort a scan rather than be isolated.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidCriterion) || errors.Is(err, ErrEmptyInput)
}
