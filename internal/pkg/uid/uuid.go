package uid

import "github.com/google/uuid"

// UUID hands out time-ordered UUIDv7 strings. OTP requests expose these to
// clients in place of their snowflake ids.
type UUID struct{}

func NewUUID() *UUID { return &UUID{} }

func (*UUID) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsUUID reports whether s is a UUID in any of the accepted textual forms.
func IsUUID(s string) bool {
	return uuid.Validate(s) == nil
}
