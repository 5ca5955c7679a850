package usecase

import (
	"context"
	"testing"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/jwt"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminCtx() context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{
		RegisteredClaims: jwtv5.RegisteredClaims{Subject: "1"},
		UserID:           1,
		Username:         "admin",
	})
}

func TestUsecase_Settings(t *testing.T) {
	valid := SettingsInput{CodeType: "alphanumeric", CodeLength: 6, CodeValiditySeconds: 120, CaseSensitive: true}

	t.Run("authentication required", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.uc.GetSettings(context.Background())

		requireCode(t, err, goerror.CodeUnauthorized, "Authentication required")
	})

	t.Run("not allowed", func(t *testing.T) {
		h := newHarness(t)
		h.enforcer.allow = false

		_, err := h.uc.UpdateSettings(adminCtx(), valid)

		requireCode(t, err, goerror.CodeForbidden, "Account not allowed")
		assert.Equal(t, []any{"1", "accounts.otp_settings", "write"}, h.enforcer.got)
	})

	t.Run("enforcer failure", func(t *testing.T) {
		h := newHarness(t)
		h.enforcer.err = errBoom

		_, err := h.uc.GetSettings(adminCtx())

		requireCode(t, err, goerror.CodeInternal, "")
	})

	t.Run("get", func(t *testing.T) {
		h := newHarness(t)

		st, err := h.uc.GetSettings(adminCtx())

		require.NoError(t, err)
		assert.Equal(t, otp.Numeric, st.CodeType)
		assert.Equal(t, []any{"1", "accounts.otp_settings", "read"}, h.enforcer.got)
	})

	t.Run("create only when missing", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.uc.CreateSettings(adminCtx(), valid)
		requireCode(t, err, goerror.CodeConflict, "settings already exist")

		h.db.settings = nil
		st, err := h.uc.CreateSettings(adminCtx(), valid)
		require.NoError(t, err)
		assert.Equal(t, otp.Alphanumeric, st.CodeType)
		assert.True(t, st.UpdatedAt.Equal(t0))
	})

	t.Run("update", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.uc.UpdateSettings(adminCtx(), valid)
		require.NoError(t, err)

		assert.Equal(t, 6, h.db.settings.CodeLength)
		assert.True(t, h.db.settings.CaseSensitive)
	})

	t.Run("update validates bounds", func(t *testing.T) {
		tests := []SettingsInput{
			{CodeType: "numeric", CodeLength: 9, CodeValiditySeconds: 180},
			{CodeType: "numeric", CodeLength: 3, CodeValiditySeconds: 180},
			{CodeType: "hex", CodeLength: 5, CodeValiditySeconds: 180},
			{CodeType: "numeric", CodeLength: 5, CodeValiditySeconds: -1},
		}
		for _, in := range tests {
			h := newHarness(t)

			_, err := h.uc.UpdateSettings(adminCtx(), in)

			requireCode(t, err, goerror.CodeInvalidInput, "")
			assert.Equal(t, 5, h.db.settings.CodeLength)
		}
	})

	t.Run("update without row", func(t *testing.T) {
		h := newHarness(t)
		h.db.settings = nil

		_, err := h.uc.UpdateSettings(adminCtx(), valid)

		requireCode(t, err, goerror.CodeNotFound, "settings not found")
	})

	t.Run("delete is refused", func(t *testing.T) {
		h := newHarness(t)

		err := h.uc.DeleteSettings(adminCtx())

		requireCode(t, err, goerror.CodeForbidden, "settings can not be deleted")
		assert.NotNil(t, h.db.settings)
	})
}
