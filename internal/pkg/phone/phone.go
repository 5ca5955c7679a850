// Package phone parses free-text phone numbers into E.164 form.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// ErrInvalid is returned for input that is not a valid phone number.
var ErrInvalid = errors.New("phone: invalid phone number")

// Parser normalizes phone numbers relative to a default region.
type Parser struct {
	region string
}

// NewParser returns a Parser that resolves national numbers against region
// (ISO 3166-1 alpha-2, e.g. "IR").
func NewParser(region string) *Parser {
	return &Parser{region: strings.ToUpper(strings.TrimSpace(region))}
}

// Parse returns the E.164 form of raw, or ErrInvalid. Whether raw is a
// phone number is left entirely to libphonenumber, so input that also looks
// like an email address is accepted when the library accepts it.
func (p *Parser) Parse(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalid
	}

	num, err := phonenumbers.Parse(raw, p.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalid
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Mask hides the middle digits of an E.164 number for display,
// e.g. +989123456789 becomes +98912****789.
func Mask(e164 string) string {
	const keepHead, keepTail = 6, 3
	if len(e164) <= keepHead+keepTail {
		return e164
	}
	return e164[:keepHead] + strings.Repeat("*", len(e164)-keepHead-keepTail) + e164[len(e164)-keepTail:]
}
