package identity

import (
	"strings"
	"time"

	"authgate/cmd/identity/ids"
)

// NewULID returns a new ULID (26-char string).
func NewULID(now time.Time) (string, error) {
	return ids.NewULID(now)
}

func trimmed(s string) string { return strings.TrimSpace(s) }
