// Package jwt issues and checks the bearer tokens handed out by the token
// API. Tokens are HS512 signed and carry the authentication method in "amr".
package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSigningKeyTooShort = errors.New("jwt: HS512 key must be at least 64 bytes")
	ErrTokenExpired       = errors.New("jwt: token expired")
	ErrInvalidToken       = errors.New("jwt: invalid token")
)

// Authentication method references (RFC 8176) recorded in the amr claim.
const (
	MethodOTP      = "otp"
	MethodPassword = "pwd"
)

// JWT signs tokens for an authenticated user and verifies them on the way in.
type JWT interface {
	Generate(sub Subject) (string, error)
	Verify(token string) (Claims, error)
}

// Subject is who a token is issued to and how they proved it.
type Subject struct {
	UserID   int64
	Username string
	Method   string
}

type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id,string"`
	// Username is the phone number for accounts created by phone login.
	Username string   `json:"username"`
	Methods  []string `json:"amr,omitempty"`
}

type Config struct {
	// Secret is the HMAC key, at least 64 bytes.
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     interface{ Now() time.Time }
	// UUID generates the jti of each token.
	UUID interface{ Generate() string }
}

type ctxKey struct{}

// GetAuth returns the claims the auth middleware stored, or nil.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(ctxKey{}).(Claims)
	if !ok {
		return nil
	}
	return &clm
}

func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, clm)
}
