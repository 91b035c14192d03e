package auth

import "net/http"

// SessionCookieName carries the legacy session credential. Older frontend
// builds store the access token in a cookie instead of sending a bearer
// header.
const SessionCookieName = "taskboard_session"

// CookieSession reads the legacy session cookie and verifies it as an
// access token. It implements SessionReader.
type CookieSession struct {
	tokens *TokenManager
}

// NewCookieSession creates the legacy cookie fallback
func NewCookieSession(tokens *TokenManager) *CookieSession {
	return &CookieSession{tokens: tokens}
}

// UserID returns the user id from a valid session cookie, or ""
func (c *CookieSession) UserID(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	claims, err := c.tokens.VerifyAccess(cookie.Value)
	if err != nil {
		return ""
	}
	return claims.Subject
}
