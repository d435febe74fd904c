package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_CALLBACK_URL", "https://auth.trusted.example/oauth2/redirect/google")
	t.Setenv("AUTHORIZED_EMAIL", "owner@trusted.example")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("COOKIE_DOMAIN", ".Trusted.Example")
	t.Setenv("REDIS_HOST", "redis")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.PublicAddr)
	assert.Equal(t, ":3001", cfg.Server.PrivateAddr)
	assert.Equal(t, "trusted.example", cfg.Session.CookieDomain)
	assert.Equal(t, 24*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, 5*time.Minute, cfg.Session.PendingTTL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, StoreRedis, cfg.Session.Store)
	assert.Equal(t, 10*time.Second, cfg.Provider.Timeout)
	assert.Empty(t, cfg.Audit.KafkaBrokers)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_MAX_AGE", "60")
	t.Setenv("PENDING_TTL", "90s")
	t.Setenv("TRUSTED_PROXY_HOPS", "2")
	t.Setenv("AUDIT_KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SESSION_STORE", "Memory")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Session.MaxAge)
	assert.Equal(t, 90*time.Second, cfg.Session.PendingTTL)
	assert.Equal(t, 2, cfg.Server.TrustedProxyHops)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.KafkaBrokers)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
}

func TestFromEnvReportsEveryProblem(t *testing.T) {
	for _, key := range []string{"GOOGLE_CLIENT_ID", "AUTHORIZED_EMAIL", "GOOGLE_AUTHORIZED_EMAIL", "COOKIE_DOMAIN", "REDIS_URL", "REDIS_HOST", "SESSION_STORE"} {
		t.Setenv(key, "")
	}
	t.Setenv("SESSION_SECRET", "short")
	t.Setenv("SESSION_MAX_AGE", "forever")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_MAX_AGE")

	t.Setenv("SESSION_MAX_AGE", "")
	_, err = FromEnv()
	require.Error(t, err)
	for _, want := range []string{"GOOGLE_CLIENT_ID", "AUTHORIZED_EMAIL", "COOKIE_DOMAIN", "at least 32 bytes", "REDIS_URL"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is fine", func(t *testing.T) {
		require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run("loads values without overriding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("GK_TEST_FROM_FILE=file\nGK_TEST_PRESET=file\n"), 0o600))
		t.Setenv("GK_TEST_PRESET", "env")
		t.Setenv("GK_TEST_FROM_FILE", "")
		require.NoError(t, os.Unsetenv("GK_TEST_FROM_FILE"))

		require.NoError(t, LoadDotEnv(path))
		assert.Equal(t, "file", os.Getenv("GK_TEST_FROM_FILE"))
		assert.Equal(t, "env", os.Getenv("GK_TEST_PRESET"))
	})
}

func TestAuthorizedEmailFallsBackToLegacyName(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AUTHORIZED_EMAIL", "")
	t.Setenv("GOOGLE_AUTHORIZED_EMAIL", " legacy@trusted.example ")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "legacy@trusted.example", cfg.Session.AuthorizedEmail)
}
