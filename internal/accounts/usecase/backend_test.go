package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/storefront/internal/accounts/entity"
	"github.com/shandysiswandi/storefront/internal/pkg/goerror"
	"github.com/shandysiswandi/storefront/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhoneOTPBackend(t *testing.T) {
	ctx := context.Background()

	// Scenario: code 48213 sent to +989123456789 at t0 with the default settings.
	t.Run("scenario", func(t *testing.T) {
		h := newHarness(t)
		req, err := h.uc.CreateRequest(ctx, testPhone)
		require.NoError(t, err)

		h.clock.Set(t0.Add(21 * time.Second))
		allowed, cooldown, err := h.uc.CanRequest(ctx, testPhone)
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, 159, cooldown)

		h.clock.Set(t0.Add(85 * time.Second))
		user, err := h.uc.authenticate(ctx, Credentials{OTPID: req.ID, Code: "48213"})
		require.NoError(t, err)
		assert.Equal(t, testPhone, user.PhoneNumber)
		assert.Equal(t, testPhone, user.Username)
		assert.True(t, h.db.request(req.ID).Used)

		h.clock.Set(t0.Add(86 * time.Second))
		_, err = h.uc.authenticate(ctx, Credentials{OTPID: req.ID, Code: "48213"})
		assert.ErrorIs(t, err, entity.ErrCredentialsInvalid)
	})

	t.Run("expired code does not mutate", func(t *testing.T) {
		h := newHarness(t)
		req, err := h.uc.CreateRequest(ctx, testPhone)
		require.NoError(t, err)

		h.clock.Set(t0.Add(195 * time.Second))
		_, err = h.uc.authenticate(ctx, Credentials{OTPID: req.ID, Code: "48213"})

		assert.ErrorIs(t, err, entity.ErrCredentialsInvalid)
		assert.False(t, h.db.request(req.ID).Used)
		assert.Zero(t, h.db.userCount())
	})

	t.Run("boundary instant is expired", func(t *testing.T) {
		h := newHarness(t)
		req, err := h.uc.CreateRequest(ctx, testPhone)
		require.NoError(t, err)

		h.clock.Set(t0.Add(180 * time.Second))
		_, err = h.uc.authenticate(ctx, Credentials{OTPID: req.ID, Code: "48213"})

		assert.ErrorIs(t, err, entity.ErrCredentialsInvalid)
		assert.False(t, h.db.request(req.ID).Used)
		allowed, _, err := h.uc.CanRequest(ctx, testPhone)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("mismatch keeps the code usable", func(t *testing.T) {
		h := newHarness(t)
		req, err := h.uc.CreateRequest(ctx, testPhone)
		require.NoError(t, err)

		_, err = h.uc.authenticate(ctx, Credentials{OTPID: req.ID, Code: "00000"})
		assert.ErrorIs(t, err, entity.ErrCredentialsInvalid)
		assert.False(t, h.db.request(req.ID).Used)

		_, err = h.uc.authenticate(ctx, Credentials{OTPID: req.ID, Code: "48213"})
		assert.NoError(t, err)
	})

	t.Run("lookup by uuid", func(t *testing.T) {
		h := newHarness(t)
		req, err := h.uc.CreateRequest(ctx, testPhone)
		require.NoError(t, err)

		user, err := h.uc.authenticate(ctx, Credentials{OTPUUID: req.UUID, Code: "48213"})

		require.NoError(t, err)
		assert.Equal(t, testPhone, user.PhoneNumber)
	})

	t.Run("id and uuid together", func(t *testing.T) {
		h := newHarness(t)
		req, err := h.uc.CreateRequest(ctx, testPhone)
		require.NoError(t, err)

		_, err = h.uc.authenticate(ctx, Credentials{OTPID: req.ID, OTPUUID: req.UUID, Code: "48213"})

		assert.ErrorIs(t, err, entity.ErrCredentialsInvalid)
		assert.False(t, h.db.request(req.ID).Used)
	})

	t.Run("empty code or malformed uuid", func(t *testing.T) {
		h := newHarness(t)
		req, err := h.uc.CreateRequest(ctx, testPhone)
		require.NoError(t, err)

		_, err = h.uc.authenticate(ctx, Credentials{OTPID: req.ID})
		assert.ErrorIs(t, err, entity.ErrCredentialsInvalid)

		_, err = h.uc.authenticate(ctx, Credentials{OTPUUID: "not-a-uuid", Code: "48213"})
		assert.ErrorIs(t, err, entity.ErrCredentialsInvalid)
	})

	t.Run("case sensitivity toggle", func(t *testing.T) {
		tests := []struct {
			name          string
			caseSensitive bool
			submitted     string
			wantErr       bool
		}{
			{name: "insensitive accepts other case", submitted: "abcde"},
			{name: "sensitive accepts exact", caseSensitive: true, submitted: "AbCdE"},
			{name: "sensitive rejects other case", caseSensitive: true, submitted: "abcde", wantErr: true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Arrange
				h := newHarness(t, withCode("AbCdE"))
				h.db.settings.CodeType = otp.Alphanumeric
				h.db.settings.CaseSensitive = tt.caseSensitive
				req, err := h.uc.CreateRequest(ctx, testPhone)
				require.NoError(t, err)

				// Act
				_, err = h.uc.authenticate(ctx, Credentials{OTPID: req.ID, Code: tt.submitted})

				// Assert
				if tt.wantErr {
					assert.ErrorIs(t, err, entity.ErrCredentialsInvalid)
					return
				}
				assert.NoError(t, err)
			})
		}
	})

	t.Run("inactive user fails and spends the code", func(t *testing.T) {
		// Arrange
		h := newHarness(t)
		h.db.addUser(entity.User{ID: 7, Username: testPhone, PhoneNumber: testPhone, Status: entity.UserStatusBanned})
		req, err := h.uc.CreateRequest(ctx, testPhone)
		require.NoError(t, err)

		// Act
		_, err = h.uc.authenticate(ctx, Credentials{OTPID: req.ID, Code: "48213"})

		// Assert
		assert.ErrorIs(t, err, entity.ErrCredentialsInvalid)
		assert.True(t, h.db.request(req.ID).Used)
		allowed, _, err := h.uc.CanRequest(ctx, testPhone)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("settings missing is a server error", func(t *testing.T) {
		h := newHarness(t)
		req, err := h.uc.CreateRequest(ctx, testPhone)
		require.NoError(t, err)
		h.db.settings = nil

		_, err = h.uc.authenticate(ctx, Credentials{OTPID: req.ID, Code: "48213"})

		requireCode(t, err, goerror.CodeInternal, "")
	})
}

func TestEmailPasswordBackend(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		creds   Credentials
		status  entity.UserStatus
		wantErr bool
	}{
		{name: "valid", creds: Credentials{Email: "ali@example.com", Password: "s3cret-pass"}, status: entity.UserStatusActive},
		{name: "email case ignored", creds: Credentials{Email: "ALI@example.com", Password: "s3cret-pass"}, status: entity.UserStatusActive},
		{name: "wrong password", creds: Credentials{Email: "ali@example.com", Password: "nope"}, status: entity.UserStatusActive, wantErr: true},
		{name: "empty password", creds: Credentials{Email: "ali@example.com"}, status: entity.UserStatusActive, wantErr: true},
		{name: "unknown email", creds: Credentials{Email: "who@example.com", Password: "s3cret-pass"}, status: entity.UserStatusActive, wantErr: true},
		{name: "inactive", creds: Credentials{Email: "ali@example.com", Password: "s3cret-pass"}, status: entity.UserStatusInactive, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			h := newHarness(t)
			h.addEmailUser(t, 7, "ali@example.com", "s3cret-pass", tt.status)

			// Act
			user, err := h.uc.authenticate(ctx, tt.creds)

			// Assert
			if tt.wantErr {
				assert.ErrorIs(t, err, entity.ErrCredentialsInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(7), user.ID)
			assert.Equal(t, 1, h.db.userCount())
		})
	}
}

func TestAuthenticate_Selection(t *testing.T) {
	ctx := context.Background()

	t.Run("phone wins when both kinds arrive", func(t *testing.T) {
		h := newHarness(t)
		h.addEmailUser(t, 7, "ali@example.com", "s3cret-pass", entity.UserStatusActive)
		req, err := h.uc.CreateRequest(ctx, testPhone)
		require.NoError(t, err)

		user, err := h.uc.authenticate(ctx, Credentials{
			OTPID: req.ID, Code: "48213", Email: "ali@example.com", Password: "s3cret-pass",
		})

		require.NoError(t, err)
		assert.Equal(t, testPhone, user.PhoneNumber)
	})

	t.Run("nothing supported", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.uc.authenticate(ctx, Credentials{Code: "48213"})

		assert.ErrorIs(t, err, entity.ErrCredentialsInvalid)
	})

	t.Run("backend names", func(t *testing.T) {
		h := newHarness(t)

		names := make([]string, 0, len(h.uc.backends))
		for _, b := range h.uc.backends {
			names = append(names, b.Name())
		}

		assert.Equal(t, []string{"phone_otp", "email_password"}, names)
	})
}
