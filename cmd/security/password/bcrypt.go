package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only looks at the first 72 bytes of input; longer passwords are rejected.
const bcryptMaxBytes = 72

// maxStoredBcryptCost is the highest cost Verify computes regardless of the
// configured cost, so lowering AUTHGATE_BCRYPT_COST never strands stored hashes.
const maxStoredBcryptCost = 16

func isBcryptHash(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

func hashBcrypt(p BcryptParams, password string) (string, error) {
	if len(password) > bcryptMaxBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), p.Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}
	return string(b), nil
}

func verifyBcrypt(limits BcryptParams, encodedHash, password string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(encodedHash))
	if err != nil {
		return false, ErrInvalidHash
	}
	if cost > max(limits.Cost, maxStoredBcryptCost) {
		return false, ErrInvalidHash
	}
	if len(password) > bcryptMaxBytes {
		// Nothing this long could have been hashed by us.
		return false, nil
	}

	err = bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrInvalidHash
	}
}
