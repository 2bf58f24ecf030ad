package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	CookieName = "portfolio_session"
	// CookieMaxAge matches how long the server keeps an idle transcript.
	CookieMaxAge = 30 * time.Minute

	sessionHeader = "X-Session-Id"
)

// SetSessionCookie refreshes the session cookie. It is Secure over TLS only so
// the widget works against a plain localhost server.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, sid string) {
	http.SetCookie(w, sessionCookie(r, sid, int(CookieMaxAge.Seconds())))
}

// ClearSessionCookie tells the client to drop its session cookie.
func ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, sessionCookie(r, "", -1))
}

func sessionCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	}
}

// sessionID reads the session from the cookie, falling back to the
// X-Session-Id header for clients without a cookie jar.
func sessionID(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(sessionHeader)
}

// ensureSession returns the request's session, minting one when absent, and
// echoes it back as both cookie and header.
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	sid := sessionID(r)
	if sid == "" {
		sid = "s_" + uuid.NewString()
	}
	SetSessionCookie(w, r, sid)
	w.Header().Set(sessionHeader, sid)
	return sid
}
