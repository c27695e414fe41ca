package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNewSigner_KeyRules(t *testing.T) {
	if _, err := NewSigner(nil); !errors.Is(err, ErrSigningKeyMissing) {
		t.Fatalf("nil key: got %v", err)
	}
	if _, err := NewSigner([]byte("short")); !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("short key: got %v", err)
	}
	if _, err := NewSigner([]byte(testKey)); err != nil {
		t.Fatalf("valid key: %v", err)
	}
}

func TestSigner_SignHS256(t *testing.T) {
	s, err := NewSigner([]byte(testKey))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok, err := s.Sign(jwt.MapClaims{"username": "ana1", "exp": exp.Unix()})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("expected compact JWS, got %q", tok)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: valid=%v err=%v", parsed != nil && parsed.Valid, err)
	}
	if claims["username"] != "ana1" {
		t.Fatalf("username claim=%v", claims["username"])
	}

	_, err = jwt.ParseWithClaims(tok, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(strings.Repeat("x", 32)), nil
	})
	if err == nil {
		t.Fatalf("expected signature failure with another key")
	}
}

func TestSigner_NilClaims(t *testing.T) {
	s, _ := NewSigner([]byte(testKey))
	if _, err := s.Sign(nil); !errors.Is(err, ErrNilClaims) {
		t.Fatalf("got %v", err)
	}
}

func TestSigningKeyFromEnv(t *testing.T) {
	t.Setenv(SecretEnvKey, "")
	if _, err := SigningKeyFromEnv(MinKeyBytes); !errors.Is(err, ErrSigningKeyMissing) {
		t.Fatalf("blank: got %v", err)
	}

	t.Setenv(SecretEnvKey, "  too-short  ")
	if _, err := SigningKeyFromEnv(MinKeyBytes); !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("short: got %v", err)
	}

	t.Setenv(SecretEnvKey, "  "+testKey+"  ")
	k, err := SigningKeyFromEnv(MinKeyBytes)
	if err != nil {
		t.Fatalf("valid: %v", err)
	}
	if string(k) != testKey {
		t.Fatalf("expected trimmed key, got %q", k)
	}
}
