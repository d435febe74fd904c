package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is built once at startup and passed by value into every component.
// Nothing reads the environment after FromEnv returns.
type Config struct {
	Server   Server
	OAuth    OAuth
	Session  Session
	Redis    RedisConfig
	Audit    Audit
	Log      Log
	Provider Provider
}

// Server captures listener configuration for both gateways.
type Server struct {
	PublicAddr  string
	PrivateAddr string
	// MetricsAddr is empty when the Prometheus listener is disabled.
	MetricsAddr string
	// TrustedProxyHops is the number of reverse proxies whose
	// X-Forwarded-For entries are believed when deriving client IPs.
	TrustedProxyHops int
}

// OAuth holds the identity provider client registration.
type OAuth struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Provider bounds calls to the identity provider.
type Provider struct {
	Timeout time.Duration
}

// Session holds session and cookie policy.
type Session struct {
	// Store selects the session backend: StoreRedis (default) or StoreMemory.
	// The memory store only works when both listeners share a process.
	Store           string
	Secret          string
	CookieDomain    string
	CookieName      string
	PendingName     string
	MaxAge          time.Duration
	PendingTTL      time.Duration
	AuthorizedEmail string
}

// RedisConfig configures the session store connection.
type RedisConfig struct {
	// URL takes precedence over Addr/Password when set.
	URL          string
	Addr         string
	Password     string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Audit configures the security event sink. Without brokers events go to the log.
type Audit struct {
	KafkaBrokers []string
	KafkaTopic   string
}

// Log configures the slog handler.
type Log struct {
	Level  string
	Format string
}

// LoadDotEnv loads variables from path into the process environment when the
// file exists. Variables already set win.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		d, err := envDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}
	integer := func(key string, def int) int {
		n, err := envInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	cfg := Config{
		Server: Server{
			PublicAddr:       envOr("PUBLIC_ADDR", ":3000"),
			PrivateAddr:      envOr("PRIVATE_ADDR", ":3001"),
			MetricsAddr:      os.Getenv("METRICS_ADDR"),
			TrustedProxyHops: integer("TRUSTED_PROXY_HOPS", 0),
		},
		OAuth: OAuth{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			CallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		},
		Session: Session{
			Store:           strings.ToLower(envOr("SESSION_STORE", StoreRedis)),
			Secret:          os.Getenv("SESSION_SECRET"),
			CookieDomain:    strings.ToLower(strings.TrimPrefix(os.Getenv("COOKIE_DOMAIN"), ".")),
			CookieName:      envOr("SESSION_COOKIE_NAME", "gatekeeper_session"),
			PendingName:     envOr("PENDING_COOKIE_NAME", "gatekeeper_pending"),
			MaxAge:          duration("SESSION_MAX_AGE", 24*time.Hour),
			PendingTTL:      duration("PENDING_TTL", 5*time.Minute),
			AuthorizedEmail: strings.TrimSpace(envOr("AUTHORIZED_EMAIL", os.Getenv("GOOGLE_AUTHORIZED_EMAIL"))),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			Addr:         redisAddr(),
			Password:     os.Getenv("REDIS_PASSWORD"),
			PoolSize:     integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Audit: Audit{
			KafkaBrokers: splitList(os.Getenv("AUDIT_KAFKA_BROKERS")),
			KafkaTopic:   envOr("AUDIT_KAFKA_TOPIC", "gatekeeper.audit"),
		},
		Log: Log{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
		Provider: Provider{
			Timeout: duration("PROVIDER_TIMEOUT", 10*time.Second),
		},
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent value at once.
func (c Config) Validate() error {
	var errs []error
	required := []struct{ key, value string }{
		{"GOOGLE_CLIENT_ID", c.OAuth.ClientID},
		{"GOOGLE_CLIENT_SECRET", c.OAuth.ClientSecret},
		{"GOOGLE_CALLBACK_URL", c.OAuth.CallbackURL},
		{"AUTHORIZED_EMAIL", c.Session.AuthorizedEmail},
		{"SESSION_SECRET", c.Session.Secret},
		{"COOKIE_DOMAIN", c.Session.CookieDomain},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.key))
		}
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}
	if c.Session.MaxAge < time.Second {
		errs = append(errs, errors.New("SESSION_MAX_AGE must be at least 1s"))
	}
	if c.Session.PendingTTL < time.Second {
		errs = append(errs, errors.New("PENDING_TTL must be at least 1s"))
	}
	if c.Provider.Timeout <= 0 {
		errs = append(errs, errors.New("PROVIDER_TIMEOUT must be positive"))
	}
	if c.Server.TrustedProxyHops < 0 {
		errs = append(errs, errors.New("TRUSTED_PROXY_HOPS must not be negative"))
	}
	switch c.Session.Store {
	case StoreRedis:
		if c.Redis.URL == "" && c.Redis.Addr == "" {
			errs = append(errs, errors.New("REDIS_URL or REDIS_HOST is required for the redis session store"))
		}
	case StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE %q is not one of %s, %s", c.Session.Store, StoreRedis, StoreMemory))
	}
	if c.Session.CookieName == c.Session.PendingName {
		errs = append(errs, errors.New("session and pending cookie names must differ"))
	}
	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	// Plain integers are seconds, matching cookie Max-Age.
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func redisAddr() string {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return ""
	}
	return net.JoinHostPort(host, envOr("REDIS_PORT", "6379"))
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
