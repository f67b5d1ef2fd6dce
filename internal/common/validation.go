package common

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/result-scanner/internal/entity"
)

// MaxTermLength bounds every criterion term, in runes.
const MaxTermLength = 256

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value interface{}, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	var messages []string
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// Error returns a combined error wrapping ErrValidation, or nil.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrValidation, v.ErrorMessage())
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value interface{}) *ValidationError

// primaryRequired rejects a criterion without a primary term.
func primaryRequired(c entity.MatchCriterion) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		if c.HasPrimary() {
			return nil
		}
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}
}

// MaxLength returns a rule that rejects strings longer than max runes.
func MaxLength(max int) ValidationRule {
	return func(fieldName string, value interface{}) *ValidationError {
		str, ok := value.(string)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(str) > max {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be at most %d characters", max),
			}
		}
		return nil
	}
}

// ValidateCriterion checks the mandatory primary term and term lengths.
// The returned error wraps both ErrInvalidCriterion and ErrValidation.
func ValidateCriterion(c entity.MatchCriterion) error {
	v := NewValidator().
		Field("primary", c.Primary, primaryRequired(c), MaxLength(MaxTermLength)).
		Field("name", c.Name, MaxLength(MaxTermLength)).
		Field("dob", c.DOB, MaxLength(MaxTermLength))
	if !v.HasErrors() {
		return nil
	}
	return NewAppError("INVALID_CRITERION", v.ErrorMessage(), errors.Join(ErrInvalidCriterion, ErrValidation))
}
