package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/angelmondragon/salon-retail/pkg/config"
)

// SharedSecret verifies the operator password that gates checkout.
// A configured Argon2id hash wins over a plain value.
type SharedSecret struct {
	hash  string
	plain [sha256.Size]byte
}

// NewSharedSecret builds a verifier from the checkout configuration.
func NewSharedSecret(cfg config.CheckoutConfig) (*SharedSecret, error) {
	if hash := strings.TrimSpace(cfg.PasswordHash); hash != "" {
		if err := ValidateHash(hash); err != nil {
			return nil, fmt.Errorf("checkout password hash: %w", err)
		}
		return &SharedSecret{hash: hash}, nil
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("checkout password required")
	}
	return &SharedSecret{plain: sha256.Sum256([]byte(cfg.Password))}, nil
}

// Verify compares submitted against the configured secret in constant time.
func (s *SharedSecret) Verify(submitted string) bool {
	if s == nil {
		return false
	}
	if s.hash != "" {
		ok, err := VerifyPassword(submitted, s.hash)
		return err == nil && ok
	}
	// digests keep the comparison length independent
	sum := sha256.Sum256([]byte(submitted))
	return subtle.ConstantTimeCompare(sum[:], s.plain[:]) == 1
}
