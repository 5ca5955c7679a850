package hash

import "golang.org/x/crypto/bcrypt"

// Bcrypt verifies password hashes written before argon2id became the primary
// algorithm. It can still produce hashes, which the tests rely on.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt returns a Bcrypt hasher. A cost outside bcrypt's range falls back
// to bcrypt.DefaultCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost, pepper: pepper}
}

func (h *Bcrypt) Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(h.peppered(password), h.cost)
}

func (h *Bcrypt) Verify(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), h.peppered(password)) == nil
}

func (h *Bcrypt) peppered(password string) []byte {
	return []byte(password + h.pepper)
}
