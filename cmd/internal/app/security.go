package app

import (
	"errors"
	"fmt"

	"authgate/cmd/security/token"
)

// ValidateSecurityConfig fails fast when the token signing secret is unusable.
// session.LoadConfigFromEnv performs the same check but only reports ErrConfig.
func ValidateSecurityConfig() error {
	if _, err := token.SigningKeyFromEnv(token.MinKeyBytes); err != nil {
		switch {
		case errors.Is(err, token.ErrSigningKeyMissing):
			return fmt.Errorf("security policy: %s is required", token.SecretEnvKey)
		case errors.Is(err, token.ErrSigningKeyTooShort):
			return fmt.Errorf("security policy: %s is too short (min %d bytes)", token.SecretEnvKey, token.MinKeyBytes)
		default:
			return err
		}
	}
	return nil
}
