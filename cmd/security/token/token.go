package token

import (
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SecretEnvKey is the env var name for the signing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SecretEnvKey = "AUTHGATE_JWT_SECRET"

	// MinKeyBytes is the smallest accepted HS256 key.
	MinKeyBytes = 32
)

// Signer produces HS256-signed JWTs.
type Signer struct {
	key []byte
}

// NewSigner copies key and enforces MinKeyBytes.
func NewSigner(key []byte) (*Signer, error) {
	if len(key) == 0 {
		return nil, ErrSigningKeyMissing
	}
	if len(key) < MinKeyBytes {
		return nil, ErrSigningKeyTooShort
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Signer{key: k}, nil
}

// Sign serializes claims and signs them.
func (s *Signer) Sign(claims jwt.Claims) (string, error) {
	if claims == nil {
		return "", ErrNilClaims
	}
	out, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return out, nil
}

// SigningKeyFromEnv returns the configured key bytes (trimmed), enforcing a minimum byte length.
// If the env var is missing/blank -> ErrSigningKeyMissing.
// If too short -> ErrSigningKeyTooShort.
func SigningKeyFromEnv(minBytes int) ([]byte, error) {
	return ParseSigningKey(os.Getenv(SecretEnvKey), minBytes)
}

// ParseSigningKey applies the SigningKeyFromEnv rules to raw.
func ParseSigningKey(raw string, minBytes int) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrSigningKeyMissing
	}
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrSigningKeyTooShort
	}
	return b, nil
}
