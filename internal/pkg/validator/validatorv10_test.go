package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settingsInput struct {
	CodeType   string `validate:"required,otp_code_type"`
	CodeLength int    `validate:"min=4,max=8"`
	Password   string `validate:"omitempty,password"`
	Phone      string `validate:"omitempty,phone_e164"`
}

func TestV10Validator(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, v.Validate(settingsInput{CodeType: "numeric", CodeLength: 5}))
	})

	t.Run("InvalidFieldsAreSnakeCased", func(t *testing.T) {
		// Arrange
		in := settingsInput{CodeType: "hex", CodeLength: 9, Password: "short", Phone: "09123456789"}

		// Act
		err := v.Validate(in)

		// Assert
		var verr V10ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "CodeType must be one of numeric, alphanumeric or alphabetic", verr.Values()["code_type"])
		assert.Contains(t, verr.Values(), "code_length")
		assert.Equal(t, "Password must be 8-72 characters", verr.Values()["password"])
		assert.Equal(t, "Phone must be a phone number in international format", verr.Values()["phone"])
	})

	t.Run("Var", func(t *testing.T) {
		assert.True(t, v.Var("someone@example.com", "email"))
		assert.False(t, v.Var("notanemail", "email"))
	})
}
