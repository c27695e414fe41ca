package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetCookie_Attributes(t *testing.T) {
	cfg := DefaultConfig()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := httptest.NewRecorder()

	cfg.SetCookie(rec, Issued{Token: "tok", ExpiresAt: now.Add(time.Hour)})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "auth_token", c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, now.Add(time.Hour).Unix(), c.Expires.Unix())
}

func TestClearCookie_Expires(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CookieSecure = true
	rec := httptest.NewRecorder()

	cfg.ClearCookie(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "auth_token", c.Name)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "/", c.Path)
}
