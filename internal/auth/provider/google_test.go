package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeGoogle struct {
	server       *httptest.Server
	tokenStatus  int
	userStatus   int
	userInfo     map[string]any
	gotAuthToken string
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{
		tokenStatus: http.StatusOK,
		userStatus:  http.StatusOK,
		userInfo: map[string]any{
			"sub":            "1234567890",
			"email":          "owner@trusted.example",
			"email_verified": true,
			"name":           "Owner",
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if f.tokenStatus != http.StatusOK || r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.gotAuthToken = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.userStatus)
		_ = json.NewEncoder(w).Encode(f.userInfo)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGoogle) provider() *Google {
	return NewGoogle(GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "https://auth.trusted.example/oauth2/redirect/google",
		Endpoint: oauth2.Endpoint{
			AuthURL:   f.server.URL + "/auth",
			TokenURL:  f.server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: f.server.URL + "/userinfo",
		HTTPClient:  f.server.Client(),
	})
}

func TestGoogleAuthorizeURL(t *testing.T) {
	g := NewGoogle(GoogleConfig{
		ClientID:    "client-id",
		CallbackURL: "https://auth.trusted.example/oauth2/redirect/google",
	})

	raw := g.AuthorizeURL("state-abc", nil)
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "state-abc", q.Get("state"))
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "https://auth.trusted.example/oauth2/redirect/google", q.Get("redirect_uri"))
	assert.Equal(t, "openid email profile", q.Get("scope"))

	narrowed, err := url.Parse(g.AuthorizeURL("s", []string{"openid", "email"}))
	require.NoError(t, err)
	assert.Equal(t, "openid email", narrowed.Query().Get("scope"))
}

func TestGoogleExchange(t *testing.T) {
	t.Run("maps userinfo claims", func(t *testing.T) {
		f := newFakeGoogle(t)
		id, err := f.provider().Exchange(context.Background(), "good-code")
		require.NoError(t, err)
		assert.Equal(t, "1234567890", id.Subject)
		assert.Equal(t, "owner@trusted.example", id.Email)
		assert.True(t, id.EmailVerified)
		assert.Equal(t, "Owner", id.DisplayName)
		assert.Equal(t, "Bearer access-123", f.gotAuthToken)
	})

	t.Run("rejected code", func(t *testing.T) {
		f := newFakeGoogle(t)
		_, err := f.provider().Exchange(context.Background(), "bad-code")
		require.ErrorIs(t, err, ErrExchange)
	})

	t.Run("userinfo failure", func(t *testing.T) {
		f := newFakeGoogle(t)
		f.userStatus = http.StatusUnauthorized
		_, err := f.provider().Exchange(context.Background(), "good-code")
		require.ErrorIs(t, err, ErrExchange)
	})

	t.Run("userinfo without email", func(t *testing.T) {
		f := newFakeGoogle(t)
		delete(f.userInfo, "email")
		_, err := f.provider().Exchange(context.Background(), "good-code")
		require.ErrorIs(t, err, ErrExchange)
	})

	t.Run("cancelled context", func(t *testing.T) {
		f := newFakeGoogle(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.provider().Exchange(ctx, "good-code")
		require.ErrorIs(t, err, ErrExchange)
	})
}
