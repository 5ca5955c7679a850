package hash

import "strings"

// Hash produces and checks hashed representations of a string.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}

const argon2idPrefix = "$argon2id$"

// Password hashes new secrets with the primary hasher and verifies stored
// hashes with whichever algorithm produced them.
type Password struct {
	argon2id Hash
	bcrypt   Hash
}

// NewPassword returns a Password that hashes with argon2id.
func NewPassword(argon2id, bcrypt Hash) *Password {
	return &Password{argon2id: argon2id, bcrypt: bcrypt}
}

// Hash hashes str with argon2id.
func (p *Password) Hash(str string) ([]byte, error) {
	return p.argon2id.Hash(str)
}

// Verify checks str against hashed, dispatching on the encoding prefix.
func (p *Password) Verify(hashed, str string) bool {
	if hashed == "" {
		return false
	}
	if strings.HasPrefix(hashed, argon2idPrefix) {
		return p.argon2id.Verify(hashed, str)
	}
	return p.bcrypt.Verify(hashed, str)
}
