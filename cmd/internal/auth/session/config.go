package session

import (
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"authgate/cmd/security/token"
)

// Config defines all runtime configuration for the session subsystem.
type Config struct {
	// Issuer is the value set in the "iss" claim. Empty omits the claim.
	Issuer string

	// TTL is the token lifetime and the cookie Max-Age.
	TTL time.Duration

	CookieName     string
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieSameSite http.SameSite

	// RedirectURL receives the browser after a successful login.
	RedirectURL string

	// LoginPage receives the browser after logout.
	LoginPage string

	// Secret is the HS256 signing key.
	Secret []byte
}

// DefaultConfig returns the defaults used when no environment overrides exist.
// Secret is left empty; it has no safe default.
func DefaultConfig() Config {
	return Config{
		TTL:            time.Hour,
		CookieName:     "auth_token",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		RedirectURL:    "http://localhost:5000/",
		LoginPage:      "/login.html",
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Required:
//   - AUTHGATE_JWT_SECRET (at least 32 bytes)
//
// Optional:
//   - AUTHGATE_SESSION_TTL (Go duration)
//   - AUTHGATE_TOKEN_ISSUER
//   - AUTHGATE_COOKIE_NAME
//   - AUTHGATE_COOKIE_DOMAIN
//   - AUTHGATE_COOKIE_SECURE (bool)
//   - AUTHGATE_COOKIE_SAMESITE (lax|strict|none)
//   - AUTHGATE_REDIRECT_URL
//   - AUTHGATE_LOGIN_PAGE
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.Issuer = strings.TrimSpace(os.Getenv("AUTHGATE_TOKEN_ISSUER"))

	if v := strings.TrimSpace(os.Getenv("AUTHGATE_SESSION_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < time.Second {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	if v := strings.TrimSpace(os.Getenv("AUTHGATE_COOKIE_NAME")); v != "" {
		cfg.CookieName = v
	}
	cfg.CookieDomain = strings.TrimSpace(os.Getenv("AUTHGATE_COOKIE_DOMAIN"))

	if v := strings.TrimSpace(os.Getenv("AUTHGATE_COOKIE_SECURE")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, ErrConfig
		}
		cfg.CookieSecure = b
	}

	if v := strings.TrimSpace(os.Getenv("AUTHGATE_COOKIE_SAMESITE")); v != "" {
		ss, ok := parseSameSite(v)
		if !ok {
			return Config{}, ErrConfig
		}
		cfg.CookieSameSite = ss
	}

	if v := strings.TrimSpace(os.Getenv("AUTHGATE_REDIRECT_URL")); v != "" {
		cfg.RedirectURL = v
	}
	if v := strings.TrimSpace(os.Getenv("AUTHGATE_LOGIN_PAGE")); v != "" {
		cfg.LoginPage = v
	}

	secret, err := token.SigningKeyFromEnv(token.MinKeyBytes)
	if err != nil {
		return Config{}, ErrConfig
	}
	cfg.Secret = secret

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the invariants shared by env and file-based configuration.
// Browsers drop SameSite=None cookies without Secure, so that pairing is forced.
func (c *Config) Validate() error {
	if c.TTL < time.Second {
		return ErrConfig
	}
	if c.CookieName == "" || !validCookieName(c.CookieName) {
		return ErrConfig
	}
	if c.CookiePath == "" {
		c.CookiePath = "/"
	}
	if c.CookieSameSite == http.SameSiteNoneMode {
		c.CookieSecure = true
	}
	if len(c.Secret) < token.MinKeyBytes {
		return ErrConfig
	}
	return nil
}

func parseSameSite(v string) (http.SameSite, bool) {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode, true
	case "strict":
		return http.SameSiteStrictMode, true
	case "none":
		return http.SameSiteNoneMode, true
	default:
		return 0, false
	}
}

func validCookieName(name string) bool {
	for _, r := range name {
		if r <= ' ' || r >= 0x7f || strings.ContainsRune("()<>@,;:\\\"/[]?={}", r) {
			return false
		}
	}
	return true
}
