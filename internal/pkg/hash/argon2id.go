package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

type argon2Params struct {
	memory  uint32 // KiB
	time    uint32
	threads uint8
}

// Argon2id produces PHC-style strings:
// $argon2id$v=19$m=<KiB>,t=<passes>,p=<threads>$<salt>$<key>.
type Argon2id struct {
	params  argon2Params
	saltLen int
	keyLen  uint32
	pepper  string
}

func NewArgon2id(pepper string) *Argon2id {
	return &Argon2id{
		params:  argon2Params{memory: 32 << 10, time: 3, threads: 2},
		saltLen: 16,
		keyLen:  32,
		pepper:  pepper,
	}
}

func (a *Argon2id) Hash(str string) ([]byte, error) {
	salt := make([]byte, a.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("argon2id salt: %w", err)
	}

	key := a.derive(str, salt, a.params, a.keyLen)

	b64 := base64.RawStdEncoding
	out := fmt.Appendf(nil, "%sv=%d$m=%d,t=%d,p=%d$", argon2idPrefix, argon2.Version,
		a.params.memory, a.params.time, a.params.threads)
	out = b64.AppendEncode(out, salt)
	out = append(out, '$')
	return b64.AppendEncode(out, key), nil
}

// Verify re-derives the key with the parameters recorded in hashed, so
// hashes made under older parameters keep verifying.
func (a *Argon2id) Verify(hashed, str string) bool {
	if str == "" {
		return false
	}
	p, salt, key, err := parseArgon2id(hashed)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(key, a.derive(str, salt, p, uint32(len(key)))) == 1
}

func (a *Argon2id) derive(str string, salt []byte, p argon2Params, keyLen uint32) []byte {
	return argon2.IDKey([]byte(str+a.pepper), salt, p.time, p.memory, p.threads, keyLen)
}

var errMalformedArgon2id = errors.New("malformed argon2id hash")

func parseArgon2id(s string) (p argon2Params, salt, key []byte, err error) {
	rest, ok := strings.CutPrefix(s, argon2idPrefix)
	if !ok {
		return p, nil, nil, errMalformedArgon2id
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 {
		return p, nil, nil, errMalformedArgon2id
	}

	var version int
	if _, err = fmt.Sscanf(fields[0], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, errMalformedArgon2id
	}
	if _, err = fmt.Sscanf(fields[1], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, errMalformedArgon2id
	}
	if p.time == 0 || p.threads == 0 {
		return p, nil, nil, errMalformedArgon2id
	}

	b64 := base64.RawStdEncoding
	if salt, err = b64.DecodeString(fields[2]); err != nil {
		return p, nil, nil, errMalformedArgon2id
	}
	if key, err = b64.DecodeString(fields[3]); err != nil || len(key) == 0 {
		return p, nil, nil, errMalformedArgon2id
	}
	return p, salt, key, nil
}
