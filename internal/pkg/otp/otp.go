package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
	"strings"
)

// CodeType selects the alphabet codes are drawn from.
type CodeType string

const (
	Numeric      CodeType = "numeric"
	Alphanumeric CodeType = "alphanumeric"
	Alphabetic   CodeType = "alphabetic"
)

// Length bounds accepted by Generate.
const (
	MinLength = 4
	MaxLength = 8
)

var (
	ErrUnknownCodeType = errors.New("otp: unknown code type")
	ErrInvalidLength   = errors.New("otp: code length out of range")
)

const (
	digits  = "0123456789"
	letters = "abcdefghijklmnopqrstuvwxyz"
)

// Alphabet returns the characters a code of type t may contain.
func (t CodeType) Alphabet() (string, bool) {
	switch t {
	case Numeric:
		return digits, true
	case Alphanumeric:
		return letters + digits, true
	case Alphabetic:
		return letters, true
	default:
		return "", false
	}
}

// Valid reports whether t is a known code type.
func (t CodeType) Valid() bool {
	_, ok := t.Alphabet()
	return ok
}

// Generator produces codes.
type Generator interface {
	Generate(t CodeType, length int) (string, error)
}

// Random draws codes from crypto/rand.
type Random struct{}

// NewRandom returns a Random generator.
func NewRandom() *Random {
	return &Random{}
}

// Generate returns a code of exactly length characters from t's alphabet.
func (*Random) Generate(t CodeType, length int) (string, error) {
	alphabet, ok := t.Alphabet()
	if !ok {
		return "", ErrUnknownCodeType
	}
	if length < MinLength || length > MaxLength {
		return "", ErrInvalidLength
	}

	limit := big.NewInt(int64(len(alphabet)))

	var b strings.Builder
	b.Grow(length)
	for range length {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}

	return b.String(), nil
}

// Equal compares a submitted code with the stored one. Without case
// sensitivity "ABCD" matches "abcd".
func Equal(stored, submitted string, caseSensitive bool) bool {
	if !caseSensitive {
		stored, submitted = strings.ToLower(stored), strings.ToLower(submitted)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}
