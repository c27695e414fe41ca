package password

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validate checks a new password against the policy. Lengths are counted in
// runes. Login attempts are never run through Validate.
func (c Config) Validate(password string) error {
	switch n := utf8.RuneCountInString(password); {
	case n < c.Policy.MinLength:
		return ErrPasswordTooShort
	case n > c.Policy.MaxLength:
		return ErrPasswordTooLong
	case c.Algorithm != AlgorithmArgon2id && len(password) > bcryptMaxBytes:
		// bcrypt's limit is in bytes; multi-byte runes can cross it below MaxLength.
		return ErrPasswordTooLong
	}

	if c.Policy.RejectVeryWeak && looksVeryWeak(password) {
		return ErrWeakPassword
	}
	return nil
}

// commonBases are rejected alone or followed only by digits.
var commonBases = map[string]struct{}{
	"password": {}, "passw0rd": {}, "qwerty": {}, "qwertyuiop": {},
	"letmein": {}, "welcome": {}, "admin": {}, "senha": {},
	"iloveyou": {}, "abc": {}, "asdfgh": {},
}

// looksVeryWeak flags trivial inputs only. It is not a strength estimator.
func looksVeryWeak(pw string) bool {
	s := strings.ToLower(strings.TrimSpace(pw))
	if s == "" {
		return true
	}

	distinct := make(map[rune]struct{}, 4)
	digits := 0
	for _, r := range s {
		distinct[r] = struct{}{}
		if unicode.IsDigit(r) {
			digits++
		}
	}
	n := utf8.RuneCountInString(s)

	switch {
	case len(distinct) <= 2:
		return true
	case digits == n && n < 12:
		return true
	case isStraightRun(s):
		return true
	}

	base := strings.TrimRightFunc(s, unicode.IsDigit)
	_, common := commonBases[base]
	return common
}

// isStraightRun reports sequences such as "abcdefgh" or "87654321".
func isStraightRun(s string) bool {
	rs := []rune(s)
	if len(rs) < 3 {
		return false
	}
	step := rs[1] - rs[0]
	if step != 1 && step != -1 {
		return false
	}
	for i := 2; i < len(rs); i++ {
		if rs[i]-rs[i-1] != step {
			return false
		}
	}
	return true
}
