package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var policy = Policy{
	Domain:      "trusted.example",
	SessionName: "gatekeeper_session",
	PendingName: "gatekeeper_pending",
	SessionTTL:  24 * time.Hour,
	PendingTTL:  5 * time.Minute,
}

func TestSessionCookieAttributes(t *testing.T) {
	c := policy.Session("sid")
	assert.Equal(t, "gatekeeper_session", c.Name)
	assert.Equal(t, "sid", c.Value)
	assert.Equal(t, "trusted.example", c.Domain)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
}

func TestPendingCookieAttributes(t *testing.T) {
	c := policy.Pending("tok")
	assert.Equal(t, "gatekeeper_pending", c.Name)
	assert.Equal(t, 300, c.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)

	cleared := policy.ClearPending()
	assert.Equal(t, "gatekeeper_pending", cleared.Name)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestReadCookies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, policy.SessionID(req))
	assert.Empty(t, policy.PendingToken(req))

	req.AddCookie(&http.Cookie{Name: "gatekeeper_session", Value: "sid"})
	req.AddCookie(&http.Cookie{Name: "gatekeeper_pending", Value: "tok"})
	assert.Equal(t, "sid", policy.SessionID(req))
	assert.Equal(t, "tok", policy.PendingToken(req))

	rec := httptest.NewRecorder()
	http.SetCookie(rec, policy.Session("sid"))
	header := rec.Header().Get("Set-Cookie")
	require.NotEmpty(t, header)
	assert.Contains(t, header, "SameSite=None")
	assert.Contains(t, header, "Secure")
	assert.Contains(t, header, "HttpOnly")
	assert.Contains(t, header, "Domain=trusted.example")
}
