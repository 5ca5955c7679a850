package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOTPRequest_RemainingSeconds(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	validity := 180 * time.Second
	req := OTPRequest{SentAt: t0}

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{name: "at creation", now: t0, want: 180},
		{name: "21 seconds in", now: t0.Add(21 * time.Second), want: 159},
		{name: "fraction floors", now: t0.Add(21*time.Second + 400*time.Millisecond), want: 158},
		{name: "one second left", now: t0.Add(179 * time.Second), want: 1},
		{name: "exactly expired", now: t0.Add(validity), want: 0},
		{name: "long expired", now: t0.Add(195 * time.Second), want: 0},
		{name: "sent in the future", now: t0.Add(-10 * time.Second), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, req.RemainingSeconds(tt.now, validity))
		})
	}

	for k := 0; k <= 180; k++ {
		now := t0.Add(validity - time.Duration(k)*time.Second)
		assert.Equal(t, k, req.RemainingSeconds(now, validity), "k=%d", k)
	}
}

func TestOTPRequest_Usable(t *testing.T) {
	t0 := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	validity := 180 * time.Second

	assert.True(t, OTPRequest{SentAt: t0}.Usable(t0.Add(179*time.Second), validity))
	assert.False(t, OTPRequest{SentAt: t0}.Usable(t0.Add(validity), validity))
	assert.False(t, OTPRequest{SentAt: t0, Used: true}.Usable(t0, validity))
}

func TestOTPSettings(t *testing.T) {
	s := DefaultOTPSettings()

	assert.Equal(t, 5, s.CodeLength)
	assert.Equal(t, 180*time.Second, s.Validity())
	assert.False(t, s.CaseSensitive)
}

func TestLoginSession_Transitions(t *testing.T) {
	t.Run("phone then email clears otp keys", func(t *testing.T) {
		s := NewLoginSession()

		s.IdentifyPhone(42, "+989123456789")
		assert.True(t, s.CanConfirmOTP())
		assert.False(t, s.CanConfirmEmail())

		s.IdentifyEmail("a@b.co")
		assert.False(t, s.CanConfirmOTP())
		assert.True(t, s.CanConfirmEmail())
		assert.Zero(t, s.OTPID)
		assert.Empty(t, s.PhoneNumber)
	})

	t.Run("authenticate drops pending keys", func(t *testing.T) {
		s := NewLoginSession()
		s.IdentifyPhone(42, "+989123456789")

		s.Authenticate(7)

		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, LoginSession{State: LoginStateAuthenticated, UserID: 7}, *s)
	})

	t.Run("reset", func(t *testing.T) {
		s := &LoginSession{State: LoginStateAuthenticated, UserID: 7}

		s.Reset()

		assert.Equal(t, *NewLoginSession(), *s)
		assert.False(t, s.IsAuthenticated())
	})

	t.Run("state validity", func(t *testing.T) {
		assert.True(t, LoginStateOTPPending.Valid())
		assert.False(t, LoginState("bogus").Valid())
	})
}

func TestUser_CanAuthenticate(t *testing.T) {
	assert.True(t, User{Status: UserStatusActive}.CanAuthenticate())
	assert.False(t, User{Status: UserStatusInactive}.CanAuthenticate())
	assert.False(t, User{Status: UserStatusBanned}.CanAuthenticate())
	assert.Equal(t, "Banned", UserStatusBanned.String())
}
