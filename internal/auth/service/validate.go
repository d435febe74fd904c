package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"gatekeeper/internal/auth/models"
	dErrors "gatekeeper/pkg/domain-errors"
	"gatekeeper/pkg/platform/sentinel"
	"gatekeeper/pkg/requestcontext"
)

// Validate resolves a session id to its identity. Unknown, malformed and
// expired ids are CodeUnauthorized. A store failure is CodeUnavailable and
// callers must treat it as unauthenticated. Lifetime is not extended.
func (m *Manager) Validate(ctx context.Context, sessionID string) (*models.Identity, error) {
	if !wellFormedID(sessionID) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}

	sess, err := m.findSession(ctx, sessionID)
	if err != nil {
		if isAbsent(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid session")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "session store unavailable")
	}
	if sess.IsExpired(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired")
	}

	identity := sess.Identity
	return &identity, nil
}

func (m *Manager) findSession(ctx context.Context, id string) (*models.Session, error) {
	ctx, span := m.tracer.Start(ctx, "sessions.FindByID")
	defer span.End()

	sess, err := m.sessions.FindByID(ctx, id)
	span.SetAttributes(attribute.Bool("session.found", err == nil))
	if err != nil && !isAbsent(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session store unavailable")
	}
	return sess, err
}

// isAbsent reports store errors that mean "no usable record" rather than
// "store unreachable".
func isAbsent(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrCorrupt)
}
