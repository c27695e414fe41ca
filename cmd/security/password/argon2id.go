package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const argon2Prefix = "$argon2id$"

var argon2B64 = base64.RawStdEncoding

// argon2Hash is the decoded form of
// $argon2id$v=19$m=<KiB>,t=<iterations>,p=<lanes>$<salt>$<key>
type argon2Hash struct {
	memoryKiB uint32
	time      uint32
	threads   uint8
	salt      []byte
	key       []byte
}

func (h argon2Hash) String() string {
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version, h.memoryKiB, h.time, h.threads,
		argon2B64.EncodeToString(h.salt), argon2B64.EncodeToString(h.key))
}

func hashArgon2id(p Argon2idParams, password string) (string, error) {
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	h := argon2Hash{
		memoryKiB: p.MemoryKiB,
		time:      p.Iterations,
		threads:   p.Parallelism,
		salt:      salt,
		key:       argon2.IDKey([]byte(password), salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLength),
	}
	return h.String(), nil
}

func verifyArgon2id(limits Argon2idParams, encodedHash, password string) (bool, error) {
	h, err := parseArgon2id(encodedHash)
	if err != nil {
		return false, err
	}
	if !h.withinLimits(limits) {
		return false, ErrInvalidHash
	}

	got := argon2.IDKey([]byte(password), h.salt, h.time, h.memoryKiB, h.threads,
		uint32(len(h.key))) // #nosec G115 -- withinLimits caps the key at 128 bytes
	return subtle.ConstantTimeCompare(got, h.key) == 1, nil
}

// maxStoredArgon2 is the most expensive profile Verify computes, matching the
// upper bounds FromEnv accepts. It does not move with the configured profile.
var maxStoredArgon2 = Argon2idParams{
	MemoryKiB:   1024 * 1024, // 1 GiB
	Iterations:  20,
	Parallelism: 64,
}

// withinLimits refuses stored hashes whose parameters exceed both the fixed
// ceiling and the configured profile.
func (h argon2Hash) withinLimits(limits Argon2idParams) bool {
	return h.memoryKiB <= max(limits.MemoryKiB, maxStoredArgon2.MemoryKiB) &&
		h.time <= max(limits.Iterations, maxStoredArgon2.Iterations) &&
		h.threads <= max(limits.Parallelism, maxStoredArgon2.Parallelism) &&
		len(h.salt) >= 8 && len(h.salt) <= 64 &&
		len(h.key) >= 16 && len(h.key) <= 128
}

func parseArgon2id(encoded string) (argon2Hash, error) {
	rest, ok := strings.CutPrefix(encoded, argon2Prefix)
	if !ok {
		return argon2Hash{}, ErrInvalidHash
	}
	fields := strings.Split(rest, "$")
	if len(fields) != 4 || fields[0] != "v="+strconv.Itoa(argon2.Version) {
		return argon2Hash{}, ErrInvalidHash
	}

	var h argon2Hash
	for _, kv := range strings.Split(fields[1], ",") {
		k, v, found := strings.Cut(kv, "=")
		if !found {
			return argon2Hash{}, ErrInvalidHash
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return argon2Hash{}, ErrInvalidHash
		}
		switch k {
		case "m":
			h.memoryKiB = uint32(n)
		case "t":
			h.time = uint32(n)
		case "p":
			if n > 255 {
				return argon2Hash{}, ErrInvalidHash
			}
			h.threads = uint8(n)
		default:
			return argon2Hash{}, ErrInvalidHash
		}
	}
	if h.memoryKiB == 0 || h.time == 0 || h.threads == 0 {
		return argon2Hash{}, ErrInvalidHash
	}

	var err error
	if h.salt, err = argon2B64.DecodeString(fields[2]); err != nil {
		return argon2Hash{}, ErrInvalidHash
	}
	if h.key, err = argon2B64.DecodeString(fields[3]); err != nil {
		return argon2Hash{}, ErrInvalidHash
	}
	return h, nil
}
