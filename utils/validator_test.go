package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signInForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Last4    string `validate:"omitempty,len=4"`
}

func TestValidateStructPasses(t *testing.T) {
	assert.NoError(t, ValidateStruct(signInForm{Email: "user@example.com", Password: "secret1"}))
}

func TestValidateStructFlattensMessages(t *testing.T) {
	err := ValidateStruct(signInForm{})
	require.Error(t, err)
	assert.Equal(t, "email is required, password is required", err.Error())

	// The joined message is carried verbatim, not interpreted as a format
	err = ValidateStruct(signInForm{Email: "100%@", Password: "abc"})
	require.Error(t, err)
	assert.Equal(t, "email must be a valid email, password must be at least 6 characters", err.Error())

	err = ValidateStruct(signInForm{Email: "user@example.com", Password: "secret1", Last4: "42"})
	require.Error(t, err)
	assert.Equal(t, "last4 must be exactly 4 characters", err.Error())
}
