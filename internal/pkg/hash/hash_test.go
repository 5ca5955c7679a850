package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPassword_Verify(t *testing.T) {
	argon := NewArgon2id("pepper")
	bc := NewBcrypt(bcrypt.MinCost, "pepper")
	p := NewPassword(argon, bc)

	argonHash, err := p.Hash("s3cret-pass")
	require.NoError(t, err)
	require.Contains(t, string(argonHash), "$argon2id$")

	bcryptHash, err := bc.Hash("s3cret-pass")
	require.NoError(t, err)

	tests := []struct {
		name   string
		hashed string
		plain  string
		want   bool
	}{
		{name: "Argon2idMatch", hashed: string(argonHash), plain: "s3cret-pass", want: true},
		{name: "Argon2idMismatch", hashed: string(argonHash), plain: "wrong", want: false},
		{name: "BcryptMatch", hashed: string(bcryptHash), plain: "s3cret-pass", want: true},
		{name: "BcryptMismatch", hashed: string(bcryptHash), plain: "wrong", want: false},
		{name: "EmptyHash", hashed: "", plain: "s3cret-pass", want: false},
		{name: "Garbage", hashed: "$argon2id$v=19$broken", plain: "s3cret-pass", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Verify(tt.hashed, tt.plain))
		})
	}
}

func TestHMACSHA256(t *testing.T) {
	h := NewHMACSHA256("secret")

	a, err := h.Hash("session-1")
	require.NoError(t, err)
	b, err := h.Hash("session-1")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.True(t, h.Verify(string(a), "session-1"))
	assert.False(t, h.Verify(string(a), "session-2"))
}
