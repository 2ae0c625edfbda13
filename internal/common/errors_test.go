package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationReasons_MatchTaxonomy(t *testing.T) {
	assert.True(t, errors.Is(ErrUsernameTaken, ErrorAlreadyExists))
	assert.True(t, errors.Is(ErrEmailTaken, ErrorAlreadyExists))
	assert.True(t, errors.Is(ErrPasswordTooShort, ErrorValidation))
	assert.True(t, errors.Is(ErrPasswordTooLong, ErrorValidation))

	assert.False(t, errors.Is(ErrUsernameTaken, ErrEmailTaken))
	assert.Equal(t, "username already exists", ErrUsernameTaken.Error())
}

func TestValidationf(t *testing.T) {
	err := Validationf("price must be >= 0, got %v", -1)
	assert.True(t, errors.Is(err, ErrorValidation))
	assert.Equal(t, "validation error: price must be >= 0, got -1", err.Error())
}
