// Package uid generates identifiers: snowflake numbers for primary keys,
// UUIDv7 strings for public references and opaque object ids for session
// handles.
package uid

import (
	"crypto/sha256"
	"errors"
	"os"
	"strings"
)

// ErrStableNodeIdentityUnavailable indicates no stable node identity is available.
var ErrStableNodeIdentityUnavailable = errors.New("uid: cannot determine stable node identity (machine-id/hostname unavailable)")

// NumberID generates sortable numeric identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

// nodeFingerprint hashes /etc/machine-id, falling back to the hostname.
func nodeFingerprint() ([32]byte, error) {
	if b, err := os.ReadFile("/etc/machine-id"); err == nil {
		if s := strings.TrimSpace(string(b)); s != "" {
			return sha256.Sum256([]byte(s)), nil
		}
	}

	if h, err := os.Hostname(); err == nil {
		if h = strings.TrimSpace(h); h != "" {
			return sha256.Sum256([]byte(h)), nil
		}
	}

	return [32]byte{}, ErrStableNodeIdentityUnavailable
}
