package entity

import (
	"errors"
	"math"
	"time"

	"github.com/shandysiswandi/storefront/internal/pkg/otp"
)

// ErrSettingsMissing means the OTP settings row does not exist. The OTP
// subsystem cannot run without it.
var ErrSettingsMissing = errors.New("accounts: otp settings are not configured")

// OTPRequest is one code sent to a phone number.
type OTPRequest struct {
	ID          int64
	UUID        string
	PhoneNumber string
	Code        string
	Used        bool
	SentAt      time.Time
}

// ExpiresAt is the first instant at which the request is no longer usable.
func (r OTPRequest) ExpiresAt(validity time.Duration) time.Time {
	return r.SentAt.Add(validity)
}

// Usable reports whether the request is unused and now < sent_at+validity.
func (r OTPRequest) Usable(now time.Time, validity time.Duration) bool {
	return !r.Used && now.Before(r.ExpiresAt(validity))
}

// RemainingSeconds returns floor(sent_at + validity - now) in whole seconds.
// A value outside [0, validity] collapses to 0, which also covers a
// sent_at in the future caused by clock skew.
func (r OTPRequest) RemainingSeconds(now time.Time, validity time.Duration) int {
	left := r.ExpiresAt(validity).Sub(now)
	if left <= 0 || left > validity {
		return 0
	}
	return int(math.Floor(left.Seconds()))
}

// OTPSettings is the process-wide OTP configuration. Exactly one row exists.
type OTPSettings struct {
	CodeType            otp.CodeType
	CodeLength          int
	CodeValiditySeconds int
	CaseSensitive       bool
	UpdatedAt           time.Time
}

// DefaultOTPSettings mirrors the defaults seeded by the schema migration.
func DefaultOTPSettings() OTPSettings {
	return OTPSettings{
		CodeType:            otp.Numeric,
		CodeLength:          5,
		CodeValiditySeconds: 180,
	}
}

// Validity is the lifetime of a code.
func (s OTPSettings) Validity() time.Duration {
	return time.Duration(s.CodeValiditySeconds) * time.Second
}
