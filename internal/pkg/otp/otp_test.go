package otp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom_Generate(t *testing.T) {
	g := NewRandom()

	for _, ct := range []CodeType{Numeric, Alphanumeric, Alphabetic} {
		alphabet, ok := ct.Alphabet()
		require.True(t, ok)

		for length := MinLength; length <= MaxLength; length++ {
			t.Run(string(ct), func(t *testing.T) {
				for range 50 {
					code, err := g.Generate(ct, length)
					require.NoError(t, err)
					assert.Len(t, code, length)
					for _, c := range code {
						assert.True(t, strings.ContainsRune(alphabet, c), "%q not in %s alphabet", c, ct)
					}
				}
			})
		}
	}

	t.Run("UnknownType", func(t *testing.T) {
		_, err := g.Generate("hex", 5)
		assert.ErrorIs(t, err, ErrUnknownCodeType)
	})

	t.Run("LengthOutOfRange", func(t *testing.T) {
		_, err := g.Generate(Numeric, 3)
		assert.ErrorIs(t, err, ErrInvalidLength)
		_, err = g.Generate(Numeric, 9)
		assert.ErrorIs(t, err, ErrInvalidLength)
	})

	t.Run("CoversAlphabet", func(t *testing.T) {
		seen := make(map[rune]struct{})
		for range 200 {
			code, err := g.Generate(Numeric, 8)
			require.NoError(t, err)
			for _, c := range code {
				seen[c] = struct{}{}
			}
		}
		assert.Len(t, seen, 10)
	})
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("abcd", "ABCD", false))
	assert.False(t, Equal("abcd", "ABCD", true))
	assert.True(t, Equal("48213", "48213", true))
	assert.False(t, Equal("48213", "48214", false))
}
