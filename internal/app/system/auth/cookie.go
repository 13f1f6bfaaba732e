// internal/app/system/auth/cookie.go
package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

// CookieName is the cookie that carries the session token.
const CookieName = "token"

// CookieCodec signs (and optionally encrypts) the token cookie.
type CookieCodec struct {
	sc     *securecookie.SecureCookie
	secure bool
}

// NewCookieCodec builds a codec from the configured keys. hashKey is
// required; blockKey enables encryption and must be 16, 24 or 32 bytes.
func NewCookieCodec(hashKey, blockKey string, secure bool) (*CookieCodec, error) {
	if len(hashKey) < 32 {
		return nil, fmt.Errorf("cookie hash key must be at least 32 bytes, got %d", len(hashKey))
	}
	var block []byte
	if blockKey != "" {
		switch len(blockKey) {
		case 16, 24, 32:
			block = []byte(blockKey)
		default:
			return nil, fmt.Errorf("cookie block key must be 16, 24 or 32 bytes, got %d", len(blockKey))
		}
	}
	return &CookieCodec{sc: securecookie.New([]byte(hashKey), block), secure: secure}, nil
}

// Set writes the token cookie expiring at exp.
func (c *CookieCodec) Set(w http.ResponseWriter, token string, exp time.Time) error {
	encoded, err := c.sc.Encode(CookieName, token)
	if err != nil {
		return fmt.Errorf("encode token cookie: %w", err)
	}
	http.SetCookie(w, c.cookie(encoded, exp))
	return nil
}

// Clear expires the token cookie.
func (c *CookieCodec) Clear(w http.ResponseWriter) {
	ck := c.cookie("", time.Unix(0, 0))
	ck.MaxAge = -1
	http.SetCookie(w, ck)
}

// Read returns the decoded token, or "" if the cookie is absent or tampered.
func (c *CookieCodec) Read(r *http.Request) string {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return ""
	}
	var token string
	if err := c.sc.Decode(CookieName, ck.Value, &token); err != nil {
		return ""
	}
	return token
}

func (c *CookieCodec) cookie(value string, exp time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	// The SPA is served from another origin in production.
	if c.secure {
		ck.SameSite = http.SameSiteNoneMode
	}
	return ck
}
