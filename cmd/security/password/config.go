package password

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Algorithm names the scheme used for new hashes.
// Verification always dispatches on the hash prefix, so both are accepted.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

// DefaultBcryptCost is the work factor for new bcrypt hashes.
const DefaultBcryptCost = 10

// BcryptParams controls bcrypt hashing cost.
type BcryptParams struct {
	Cost int
}

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls password validation and anti-DoS boundaries.
type Policy struct {
	MinLength int
	MaxLength int
	// If true, enable an extra, minimal weak-pattern rejection.
	RejectVeryWeak bool
}

// Config is the single configuration surface for this package.
type Config struct {
	Algorithm Algorithm
	Bcrypt    BcryptParams
	Params    Argon2idParams
	Policy    Policy

	// MaxConcurrent bounds simultaneous Hash/Verify computations in a Hasher.
	MaxConcurrent int
}

// DefaultConfig returns bcrypt at cost 10 with an Argon2id fallback profile.
func DefaultConfig() Config {
	// CPU-aware parallelism, clamped to [1..4] to keep resource usage predictable in containers.
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	workers := threads
	if threads > 4 {
		threads = 4
	}

	return Config{
		Algorithm: AlgorithmBcrypt,
		Bcrypt:    BcryptParams{Cost: DefaultBcryptCost},
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above; safe conversion.
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			// Any non-empty password is accepted; set
			// AUTHGATE_PASSWORD_MIN_LEN=8 or higher to harden.
			MinLength:      1,
			MaxLength:      bcryptMaxBytes,
			RejectVeryWeak: false,
		},
		MaxConcurrent: workers,
	}
}

// envSetting binds one environment variable to a Config field.
type envSetting struct {
	key string
	set func(c *Config, v string) error
}

// envSettings is the password env surface, applied in order by FromEnv.
var envSettings = []envSetting{
	{"AUTHGATE_PASSWORD_ALGORITHM", func(c *Config, v string) (err error) {
		c.Algorithm, err = parseAlgorithm(v)
		return err
	}},
	{"AUTHGATE_BCRYPT_COST", func(c *Config, v string) (err error) {
		c.Bcrypt.Cost, err = parseIntIn(v, bcrypt.MinCost, 16)
		return err
	}},
	{"AUTHGATE_PASSWORD_MIN_LEN", func(c *Config, v string) (err error) {
		c.Policy.MinLength, err = parseIntIn(v, 1, 1024)
		return err
	}},
	{"AUTHGATE_PASSWORD_MAX_LEN", func(c *Config, v string) (err error) {
		c.Policy.MaxLength, err = parseIntIn(v, 1, 4096)
		return err
	}},
	{"AUTHGATE_PASSWORD_REJECT_VERY_WEAK", func(c *Config, v string) (err error) {
		c.Policy.RejectVeryWeak, err = parseBool(v)
		return err
	}},
	{"AUTHGATE_ARGON2_MEMORY_KIB", func(c *Config, v string) (err error) {
		c.Params.MemoryKiB, err = parseUint32In(v, 8*1024, 1024*1024) // 8 MiB .. 1 GiB
		return err
	}},
	{"AUTHGATE_ARGON2_ITERATIONS", func(c *Config, v string) (err error) {
		c.Params.Iterations, err = parseUint32In(v, 1, 20)
		return err
	}},
	{"AUTHGATE_ARGON2_PARALLELISM", func(c *Config, v string) error {
		u, err := parseUint32In(v, 1, math.MaxUint8)
		if err != nil {
			return err
		}
		c.Params.Parallelism = uint8(u) // #nosec G115 -- bounded by MaxUint8 above.
		return nil
	}},
	{"AUTHGATE_ARGON2_SALT_LEN", func(c *Config, v string) (err error) {
		c.Params.SaltLength, err = parseUint32In(v, 8, 64)
		return err
	}},
	{"AUTHGATE_ARGON2_KEY_LEN", func(c *Config, v string) (err error) {
		c.Params.KeyLength, err = parseUint32In(v, 16, 64)
		return err
	}},
	{"AUTHGATE_HASH_CONCURRENCY", func(c *Config, v string) (err error) {
		c.MaxConcurrent, err = parseIntIn(v, 1, 1024)
		return err
	}},
}

// FromEnv starts from DefaultConfig and applies every AUTHGATE_PASSWORD_*,
// AUTHGATE_BCRYPT_*, AUTHGATE_ARGON2_* and AUTHGATE_HASH_CONCURRENCY variable
// that is set. The first invalid value aborts with the variable name.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	for _, s := range envSettings {
		v, ok := os.LookupEnv(s.key)
		if !ok {
			continue
		}
		if err := s.set(&cfg, v); err != nil {
			return Config{}, fmt.Errorf("%s: %w", s.key, err)
		}
	}
	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// check is the final sanity pass shared by FromEnv and NewHasher.
func (c Config) check() error {
	switch c.Algorithm {
	case AlgorithmBcrypt:
		if c.Bcrypt.Cost < bcrypt.MinCost || c.Bcrypt.Cost > bcrypt.MaxCost {
			return fmt.Errorf("password config invalid: bcrypt cost %d out of range [%d..%d]",
				c.Bcrypt.Cost, bcrypt.MinCost, bcrypt.MaxCost)
		}
	case AlgorithmArgon2id:
		if c.Params.MemoryKiB == 0 || c.Params.Iterations == 0 || c.Params.Parallelism == 0 {
			return fmt.Errorf("password config invalid: argon2id params must be non-zero")
		}
	default:
		return fmt.Errorf("password config invalid: unknown algorithm %q", c.Algorithm)
	}

	if c.Policy.MinLength > c.Policy.MaxLength {
		return fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			c.Policy.MinLength,
			c.Policy.MaxLength,
		)
	}
	return nil
}

func parseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case AlgorithmBcrypt:
		return AlgorithmBcrypt, nil
	case AlgorithmArgon2id:
		return AlgorithmArgon2id, nil
	default:
		return "", errors.New("unsupported algorithm")
	}
}

func parseIntIn(s string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("not an integer")
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("out of range [%d..%d]", lo, hi)
	}
	return n, nil
}

func parseUint32In(s string, lo, hi uint32) (uint32, error) {
	u, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, errors.New("not an unsigned integer")
	}
	if uint32(u) < lo || uint32(u) > hi {
		return 0, fmt.Errorf("out of range [%d..%d]", lo, hi)
	}
	return uint32(u), nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, errors.New("invalid boolean")
}
