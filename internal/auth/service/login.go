package service

import (
	"context"
	"crypto/subtle"
	"net/url"

	"go.opentelemetry.io/otel/codes"

	"gatekeeper/internal/auth/models"
	dErrors "gatekeeper/pkg/domain-errors"
	"gatekeeper/pkg/requestcontext"
)

// BeginPendingAuthorization persists a pending login for returnTo and returns
// it with the signed token the browser must present at the callback.
// returnTo must already be validated.
func (m *Manager) BeginPendingAuthorization(ctx context.Context, returnTo *url.URL) (*models.PendingAuthorization, string, error) {
	now := requestcontext.Now(ctx)

	id, err := newRandomID()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate pending id")
	}
	state, err := newRandomID()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate state")
	}

	p := &models.PendingAuthorization{
		ID:        id,
		ReturnTo:  returnTo.String(),
		State:     state,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.PendingTTL),
	}
	if err := m.pending.SavePending(ctx, p, m.cfg.PendingTTL); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist pending authorization")
	}

	token, err := m.signer.Sign(p.ID, now, p.ExpiresAt)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign pending token")
	}
	return p, token, nil
}

// ResumePendingAuthorization verifies the pending token and consumes the
// record it names. The record is gone after this call whatever the outcome
// of the rest of the callback.
func (m *Manager) ResumePendingAuthorization(ctx context.Context, token string) (*models.PendingAuthorization, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeInvalidState, "no pending authorization")
	}
	now := requestcontext.Now(ctx)

	id, err := m.signer.Verify(token, now)
	if err != nil {
		return nil, err
	}

	p, err := m.pending.ConsumePending(ctx, id)
	if err != nil {
		if isAbsent(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeInvalidState, "no pending authorization")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load pending authorization")
	}
	if p.IsExpired(now) {
		return nil, dErrors.New(dErrors.CodeInvalidState, "pending authorization expired")
	}
	return p, nil
}

// Authorize finishes the provider round-trip for a consumed pending login:
// the returned state must match, the code is exchanged under the provider
// timeout, and the resulting identity goes through CompleteAuthorization.
func (m *Manager) Authorize(ctx context.Context, pending *models.PendingAuthorization, state, code string) (*models.Session, error) {
	if subtle.ConstantTimeCompare([]byte(state), []byte(pending.State)) != 1 {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "state mismatch")
	}
	if code == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing authorization code")
	}

	identity, err := m.exchange(ctx, code)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "provider exchange failed")
	}

	return m.CompleteAuthorization(ctx, pending, identity)
}

// exchange runs the provider call under the provider timeout.
func (m *Manager) exchange(ctx context.Context, code string) (*models.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.ProviderTimeout)
	defer cancel()
	ctx, span := m.tracer.Start(ctx, "provider.Exchange")
	defer span.End()

	identity, err := m.provider.Exchange(ctx, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "exchange failed")
		return nil, err
	}
	return identity, nil
}

// CompleteAuthorization creates a session for identity if its email is the
// authorized one. The session is persisted before it is returned.
func (m *Manager) CompleteAuthorization(ctx context.Context, pending *models.PendingAuthorization, identity *models.Identity) (*models.Session, error) {
	if identity == nil || !identity.EmailMatches(m.cfg.AuthorizedEmail) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "email not authorized")
	}

	id, err := newRandomID()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate session id")
	}
	now := requestcontext.Now(ctx)
	sess := &models.Session{
		ID:        id,
		Identity:  *identity,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.SessionTTL),
	}
	if err := m.sessions.Save(ctx, sess, m.cfg.SessionTTL); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist session")
	}

	m.logger.InfoContext(ctx, "session created",
		"pending_created_at", pending.CreatedAt,
		"expires_at", sess.ExpiresAt,
	)
	return sess, nil
}
