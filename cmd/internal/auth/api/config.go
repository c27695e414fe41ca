package authapi

import (
	"os"
	"strconv"
	"strings"
)

// DefaultMaxBodyBytes bounds form bodies.
const DefaultMaxBodyBytes int64 = 64 << 10

// Config controls auth API behavior.
type Config struct {
	MaxBodyBytes int64
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
//   - AUTHGATE_MAX_BODY_BYTES
func LoadConfigFromEnv() Config {
	return Config{
		MaxBodyBytes: envInt64("AUTHGATE_MAX_BODY_BYTES", DefaultMaxBodyBytes),
	}
}

func (c Config) maxBodyBytes() int64 {
	if c.MaxBodyBytes <= 0 {
		return DefaultMaxBodyBytes
	}
	return c.MaxBodyBytes
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
