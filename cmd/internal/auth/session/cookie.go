package session

import (
	"net/http"
	"time"
)

// SetCookie writes the session cookie for issued. Max-Age is the token TTL in
// whole seconds; Expires is the token expiry.
func (c Config) SetCookie(w http.ResponseWriter, issued Issued) {
	maxAge := int(c.TTL / time.Second)
	if maxAge <= 0 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName,
		Value:    issued.Token,
		Path:     c.cookiePath(),
		Domain:   c.CookieDomain,
		Expires:  issued.ExpiresAt.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.CookieSecure,
		SameSite: c.CookieSameSite,
	})
}

// ClearCookie expires the session cookie with the same attributes it was set with.
func (c Config) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.CookieName,
		Value:    "",
		Path:     c.cookiePath(),
		Domain:   c.CookieDomain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.CookieSecure,
		SameSite: c.CookieSameSite,
	})
}

func (c Config) cookiePath() string {
	if c.CookiePath == "" {
		return "/"
	}
	return c.CookiePath
}
