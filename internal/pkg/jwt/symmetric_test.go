package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/storefront/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqID struct{ n int }

func (s *seqID) Generate() string {
	s.n++
	return "jti-" + strings.Repeat("x", s.n)
}

func TestSymmetric(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "storefront",
		Audiences: []string{"storefront-web"},
		TTL:       15 * time.Minute,
		Clock:     clk,
		UUID:      &seqID{},
	}

	t.Run("ShortSecret", func(t *testing.T) {
		bad := cfg
		bad.Secret = []byte("short")
		_, err := NewHS512(bad)
		assert.ErrorIs(t, err, ErrSigningKeyTooShort)
	})

	s, err := NewHS512(cfg)
	require.NoError(t, err)

	t.Run("RoundTrip", func(t *testing.T) {
		// Arrange
		token, err := s.Generate(Subject{UserID: 42, Username: "+989123456789", Method: MethodOTP})
		require.NoError(t, err)

		// Act
		claims, err := s.Verify(token)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, "+989123456789", claims.Username)
		assert.Equal(t, "42", claims.Subject)
		assert.Equal(t, []string{MethodOTP}, claims.Methods)
		assert.Equal(t, "jti-x", claims.ID)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := s.Generate(Subject{UserID: 42, Username: "u", Method: MethodPassword})
		require.NoError(t, err)

		clk.Advance(16 * time.Minute)
		defer clk.Advance(-16 * time.Minute)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("Tampered", func(t *testing.T) {
		token, err := s.Generate(Subject{UserID: 42, Username: "u"})
		require.NoError(t, err)

		_, err = s.Verify(token + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("OtherAudience", func(t *testing.T) {
		// Arrange
		other := cfg
		other.Audiences = []string{"storefront-admin"}
		o, err := NewHS512(other)
		require.NoError(t, err)
		token, err := o.Generate(Subject{UserID: 42, Username: "u"})
		require.NoError(t, err)

		// Act
		_, err = s.Verify(token)

		// Assert
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Context", func(t *testing.T) {
		assert.Nil(t, GetAuth(context.Background()))
		ctx := SetAuth(context.Background(), Claims{UserID: 9})
		assert.Equal(t, int64(9), GetAuth(ctx).UserID)
	})
}
