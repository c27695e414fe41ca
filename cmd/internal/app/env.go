package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envOr returns parse(value of key), or def when the variable is unset,
// blank, or rejected by parse.
func envOr[T any](key string, def T, parse func(string) (T, bool)) T {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if out, ok := parse(v); ok {
		return out
	}
	return def
}

func envString(key, def string) string {
	return envOr(key, def, func(v string) (string, bool) { return v, true })
}

func envBool(key string, def bool) bool {
	return envOr(key, def, func(v string) (bool, bool) {
		b, err := strconv.ParseBool(v)
		return b, err == nil
	})
}

// envPositiveInt rejects zero and negatives.
func envPositiveInt(key string, def int) int {
	return envOr(key, def, func(v string) (int, bool) {
		n, err := strconv.Atoi(v)
		return n, err == nil && n > 0
	})
}

// envPoolSize accepts 0 so that a minimum pool size can be disabled.
func envPoolSize(key string, def int32) int32 {
	return envOr(key, def, func(v string) (int32, bool) {
		n, err := strconv.ParseInt(v, 10, 32)
		return int32(n), err == nil && n >= 0
	})
}

func envDuration(key string, def time.Duration) time.Duration {
	return envOr(key, def, func(v string) (time.Duration, bool) {
		d, err := time.ParseDuration(v)
		return d, err == nil && d > 0
	})
}
