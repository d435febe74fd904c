// Package cookie holds the gateway's cookie policy.
package cookie

import (
	"net/http"
	"time"
)

// Policy describes how the session and pending cookies are written.
type Policy struct {
	Domain      string
	SessionName string
	PendingName string
	SessionTTL  time.Duration
	PendingTTL  time.Duration
}

// Session is the authenticated-session cookie. SameSite=None so the browser
// sends it on cross-subdomain sub-requests behind the proxy.
func (p Policy) Session(sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:     p.SessionName,
		Value:    sessionID,
		Domain:   p.Domain,
		Path:     "/",
		MaxAge:   seconds(p.SessionTTL),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	}
}

// Pending carries the signed pending-login token. Lax so it survives the
// top-level redirect back from the provider.
func (p Policy) Pending(token string) *http.Cookie {
	return &http.Cookie{
		Name:     p.PendingName,
		Value:    token,
		Domain:   p.Domain,
		Path:     "/",
		MaxAge:   seconds(p.PendingTTL),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearPending expires the pending cookie.
func (p Policy) ClearPending() *http.Cookie {
	c := p.Pending("")
	c.MaxAge = -1
	return c
}

// SessionID reads the session cookie value, empty when absent.
func (p Policy) SessionID(r *http.Request) string {
	return value(r, p.SessionName)
}

// PendingToken reads the pending cookie value, empty when absent.
func (p Policy) PendingToken(r *http.Request) string {
	return value(r, p.PendingName)
}

func value(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func seconds(d time.Duration) int {
	s := int(d / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
