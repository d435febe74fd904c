// Package service owns the login flow and session validation.
//
// A login has two persisted phases. BeginPendingAuthorization stores the
// validated return target and OAuth state under a random pending id; the
// browser carries a signed token for that id through the provider redirect.
// The callback consumes the pending record exactly once, exchanges the code,
// and persists a Session only for the allow-listed email.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gatekeeper/internal/auth/models"
	"gatekeeper/internal/auth/pendingtoken"
	"gatekeeper/internal/auth/provider"
)

//go:generate mockgen -source=service.go -destination=../mocks/store_mock.go -package=mocks SessionStore,PendingStore

// SessionStore persists authenticated sessions with a TTL.
type SessionStore interface {
	Save(ctx context.Context, sess *models.Session, ttl time.Duration) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
}

// PendingStore persists in-flight logins. ConsumePending must be an atomic
// get-and-delete.
type PendingStore interface {
	SavePending(ctx context.Context, p *models.PendingAuthorization, ttl time.Duration) error
	ConsumePending(ctx context.Context, id string) (*models.PendingAuthorization, error)
}

// Config holds the login policy.
type Config struct {
	AuthorizedEmail string
	SessionTTL      time.Duration
	PendingTTL      time.Duration
	ProviderTimeout time.Duration
	Scopes          []string
}

// Manager orchestrates the login flow. It is safe for concurrent use; all
// state lives in the stores.
type Manager struct {
	sessions SessionStore
	pending  PendingStore
	provider provider.Provider
	signer   *pendingtoken.Signer
	cfg      Config
	logger   *slog.Logger
	tracer   trace.Tracer
}

const tracerName = "gatekeeper/internal/auth/service"

type Option func(m *Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) {
		m.tracer = tp.Tracer(tracerName)
	}
}

// New constructs a Manager.
func New(
	sessions SessionStore,
	pending PendingStore,
	idp provider.Provider,
	signer *pendingtoken.Signer,
	cfg Config,
	opts ...Option,
) *Manager {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = provider.DefaultScopes
	}
	m := &Manager{
		sessions: sessions,
		pending:  pending,
		provider: idp,
		signer:   signer,
		cfg:      cfg,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AuthorizeURL is the provider consent URL for a pending login.
func (m *Manager) AuthorizeURL(p *models.PendingAuthorization) string {
	return m.provider.AuthorizeURL(p.State, m.cfg.Scopes)
}
