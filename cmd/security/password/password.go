package password

import "strings"

// Hash validates password against the policy and hashes it with the configured
// algorithm. Every call draws a fresh random salt.
func (c Config) Hash(password string) (string, error) {
	if err := c.Validate(password); err != nil {
		return "", err
	}

	switch c.Algorithm {
	case AlgorithmArgon2id:
		return hashArgon2id(c.Params, password)
	default:
		return hashBcrypt(c.Bcrypt, password)
	}
}

// Verify checks whether password matches the given encoded hash.
// Returns (true, nil) for a match, (false, nil) for mismatch,
// and (false, ErrInvalidHash) for malformed/unsupported hashes.
// The scheme is picked from the hash prefix, not from c.Algorithm.
func (c Config) Verify(encodedHash, password string) (bool, error) {
	switch {
	case isBcryptHash(encodedHash):
		return verifyBcrypt(c.Bcrypt, encodedHash, password)
	case strings.HasPrefix(encodedHash, argon2Prefix):
		return verifyArgon2id(c.Params, encodedHash, password)
	default:
		return false, ErrInvalidHash
	}
}

// AlgorithmOf reports which scheme produced encodedHash, or "" if unknown.
func AlgorithmOf(encodedHash string) Algorithm {
	switch {
	case isBcryptHash(encodedHash):
		return AlgorithmBcrypt
	case strings.HasPrefix(encodedHash, argon2Prefix):
		return AlgorithmArgon2id
	default:
		return ""
	}
}
