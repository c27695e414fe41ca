package identity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeUsername returns the uniqueness key for a username: trimmed and
// NFC-composed. Comparison is otherwise exact, so "Ana1" and "ana1" are two
// usernames while a decomposed "Á" matches a composed "Á".
func NormalizeUsername(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return norm.NFC.String(s)
}

// CleanDisplayName trims the optional display name and collapses inner runs of
// whitespace to single spaces.
func CleanDisplayName(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
