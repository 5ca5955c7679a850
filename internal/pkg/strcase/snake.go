// Package strcase converts Go identifiers for field names in error payloads.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake turns a Go field name into snake_case. Runs of capitals are
// kept together, so CodeLength becomes code_length, HTTPServer becomes
// http_server and OTPUUID stays otpuuid.
func ToLowerSnake(s string) string {
	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(rs) + 4)

	for i, r := range rs {
		if i > 0 && unicode.IsUpper(r) && wordStart(rs, i) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// wordStart reports whether the capital at rs[i] opens a new word.
func wordStart(rs []rune, i int) bool {
	prev := rs[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	return unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1])
}
