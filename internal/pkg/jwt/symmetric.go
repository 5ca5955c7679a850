package jwt

import (
	"errors"
	"strconv"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

const minSecretLen = 64

// Symmetric is the HS512 implementation of JWT.
type Symmetric struct {
	cfg    Config
	parser *libJWT.Parser
}

func NewHS512(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) < minSecretLen {
		return nil, ErrSigningKeyTooShort
	}

	opts := []libJWT.ParserOption{
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS512.Alg()}),
		libJWT.WithIssuer(cfg.Issuer),
		libJWT.WithIssuedAt(),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(cfg.Clock.Now),
	}
	if len(cfg.Audiences) > 0 {
		opts = append(opts, libJWT.WithAudience(cfg.Audiences...))
	}

	return &Symmetric{cfg: cfg, parser: libJWT.NewParser(opts...)}, nil
}

func (s *Symmetric) Generate(sub Subject) (string, error) {
	now := s.cfg.Clock.Now().Truncate(time.Second)

	clm := Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			ID:        s.cfg.UUID.Generate(),
			Subject:   strconv.FormatInt(sub.UserID, 10),
			Issuer:    s.cfg.Issuer,
			Audience:  s.cfg.Audiences,
			IssuedAt:  libJWT.NewNumericDate(now),
			NotBefore: libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(s.cfg.TTL)),
		},
		UserID:   sub.UserID,
		Username: sub.Username,
	}
	if sub.Method != "" {
		clm.Methods = []string{sub.Method}
	}

	return libJWT.NewWithClaims(libJWT.SigningMethodHS512, clm).SignedString(s.cfg.Secret)
}

// Verify returns ErrTokenExpired for an expired token and ErrInvalidToken
// wrapping the parser error for anything else.
func (s *Symmetric) Verify(token string) (Claims, error) {
	var clm Claims
	_, err := s.parser.ParseWithClaims(token, &clm, func(*libJWT.Token) (any, error) {
		return s.cfg.Secret, nil
	})
	switch {
	case err == nil:
		return clm, nil
	case errors.Is(err, libJWT.ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	default:
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}
}
