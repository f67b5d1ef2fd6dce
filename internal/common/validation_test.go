package common

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/result-scanner/internal/entity"
)

func TestValidateCriterion(t *testing.T) {
	assert.NoError(t, ValidateCriterion(entity.MatchCriterion{Primary: "123456"}))
	assert.NoError(t, ValidateCriterion(entity.MatchCriterion{Primary: "123456", Name: "Rahul", DOB: "15-08-2000"}))
	// matching is literal, so a whitespace term is still a term
	assert.NoError(t, ValidateCriterion(entity.MatchCriterion{Primary: " "}))

	for _, c := range []entity.MatchCriterion{
		{},
		{Name: "Rahul"},
		{Primary: "1", Name: strings.Repeat("x", MaxTermLength+1)},
	} {
		err := ValidateCriterion(c)
		assert.ErrorIs(t, err, ErrInvalidCriterion, "%+v", c)
		assert.ErrorIs(t, err, ErrValidation, "%+v", c)
		var appErr *AppError
		assert.True(t, errors.As(err, &appErr))
		assert.Equal(t, "INVALID_CRITERION", appErr.Code)
	}
}

func TestValidator_CollectsAllErrors(t *testing.T) {
	v := NewValidator().
		Field("primary", "", primaryRequired(entity.MatchCriterion{})).
		Field("name", "abcd", MaxLength(3))
	assert.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 2)
	assert.Contains(t, v.ErrorMessage(), "is required")
	assert.Contains(t, v.ErrorMessage(), "at most 3")
	assert.ErrorIs(t, v.Error(), ErrValidation)

	assert.NoError(t, NewValidator().Field("primary", "1", primaryRequired(entity.MatchCriterion{Primary: "1"})).Error())
}

func TestParseFailuref(t *testing.T) {
	cause := errors.New("xref broken")
	err := ParseFailuref(cause, "open %s", "a.pdf")
	assert.ErrorIs(t, err, ErrParseFailure)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "open a.pdf")
	assert.False(t, IsFatal(err))
	assert.True(t, IsFatal(NewAppError("EMPTY_INPUT", "none", ErrEmptyInput)))
}
