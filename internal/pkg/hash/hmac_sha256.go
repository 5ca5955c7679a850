package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 is a keyed digest used where a lookup key must not reveal its
// input, such as session ids turned into redis keys. Output is lowercase hex.
type HMACSHA256 struct {
	key []byte
}

func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{key: []byte(secret)}
}

func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(str))
	return hex.AppendEncode(nil, mac.Sum(nil)), nil
}

// Verify compares in constant time.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	want, _ := s.Hash(str)
	return hmac.Equal([]byte(hashed), want)
}
