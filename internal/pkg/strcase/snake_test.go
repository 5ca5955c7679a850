package strcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLowerSnake(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"Identifier": "identifier",
		"OTPUUID":    "otpuuid",
		"OTPID":      "otpid",
		"CodeLength": "code_length",
		"PhoneE164":  "phone_e164",
		"HTTPServer": "http_server",
		"userID":     "user_id",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ToLowerSnake(in))
		})
	}
}
