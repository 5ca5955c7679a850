// Package hash hashes and verifies secrets.
//
// Passwords are stored as bcrypt or argon2id encodings; Password picks the
// verifier from the stored encoding so both formats stay valid. HMACSHA256 is
// used for deterministic keys such as session ids in redis.
package hash
