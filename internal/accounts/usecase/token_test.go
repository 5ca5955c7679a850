package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsecase_RequestOTPAndIssueToken(t *testing.T) {
	ctx := context.Background()

	t.Run("phone flow", func(t *testing.T) {
		// Arrange
		h := newHarness(t)

		// Act
		reqOut, err := h.uc.RequestOTP(ctx, RequestOTPInput{PhoneNumber: testPhone})
		require.NoError(t, err)
		tokOut, err := h.uc.IssueToken(ctx, IssueTokenInput{OTPUUID: reqOut.OTPUUID, Code: "48213"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 180, reqOut.CooldownSeconds)
		assert.Equal(t, "Bearer", tokOut.TokenType)

		clm, err := h.jwt.Verify(tokOut.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, tokOut.UserID, clm.UserID)
		assert.Equal(t, testPhone, clm.Username)
		assert.Equal(t, []string{jwt.MethodOTP}, clm.Methods)
	})

	t.Run("cooldown", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.uc.RequestOTP(ctx, RequestOTPInput{PhoneNumber: testPhone})
		require.NoError(t, err)

		_, err = h.uc.RequestOTP(ctx, RequestOTPInput{PhoneNumber: testPhone})

		requireCode(t, err, goerror.CodeTooManyRequest, "You have to wait 180 seconds before you can request again.")
	})

	t.Run("invalid phone", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.uc.RequestOTP(ctx, RequestOTPInput{PhoneNumber: "ali@example.com"})

		requireField(t, err, "phone_number", "Please Enter a valid phone number.")
	})

	t.Run("email flow", func(t *testing.T) {
		h := newHarness(t)
		h.addEmailUser(t, 7, "ali@example.com", "s3cret-pass", entity.UserStatusActive)

		out, err := h.uc.IssueToken(ctx, IssueTokenInput{Email: "ali@example.com", Password: "s3cret-pass"})

		require.NoError(t, err)
		assert.Equal(t, int64(7), out.UserID)

		clm, err := h.jwt.Verify(out.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, []string{jwt.MethodPassword}, clm.Methods)
	})

	t.Run("bad credentials", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.uc.IssueToken(ctx, IssueTokenInput{Email: "ali@example.com", Password: "x"})

		requireCode(t, err, goerror.CodeUnauthorized, "invalid credentials")
	})
}
