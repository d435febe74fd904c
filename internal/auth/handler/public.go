package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"gatekeeper/internal/auth/cookie"
	"gatekeeper/internal/auth/metrics"
	"gatekeeper/internal/auth/models"
	"gatekeeper/internal/auth/returnto"
	dErrors "gatekeeper/pkg/domain-errors"
	"gatekeeper/pkg/platform/audit"
	"gatekeeper/pkg/platform/httputil"
	"gatekeeper/pkg/requestcontext"
)

const (
	LoginPath    = "/login"
	CallbackPath = "/oauth2/redirect/google"

	bodyMissingReturnTo = "Missing returnTo query parameter"
	bodyInvalidReturnTo = "Invalid returnTo query parameter"
)

// LoginService is the slice of the session manager the public listener uses.
type LoginService interface {
	BeginPendingAuthorization(ctx context.Context, returnTo *url.URL) (*models.PendingAuthorization, string, error)
	AuthorizeURL(p *models.PendingAuthorization) string
	ResumePendingAuthorization(ctx context.Context, token string) (*models.PendingAuthorization, error)
	Authorize(ctx context.Context, pending *models.PendingAuthorization, state, code string) (*models.Session, error)
}

// PublicHandler serves the browser-facing login flow.
type PublicHandler struct {
	service       LoginService
	cookies       cookie.Policy
	trustedDomain string
	logger        *slog.Logger
	metrics       *metrics.Metrics
	auditor       audit.Publisher
}

// NewPublic constructs the login flow handler. trustedDomain bounds the
// accepted returnTo hosts.
func NewPublic(
	service LoginService,
	cookies cookie.Policy,
	trustedDomain string,
	logger *slog.Logger,
	m *metrics.Metrics,
	auditor audit.Publisher,
) *PublicHandler {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &PublicHandler{
		service:       service,
		cookies:       cookies,
		trustedDomain: trustedDomain,
		logger:        logger,
		metrics:       m,
		auditor:       auditor,
	}
}

// Register mounts the login endpoints on the router.
func (h *PublicHandler) Register(r chi.Router) {
	r.Get(LoginPath, h.HandleLogin)
	r.Get(CallbackPath, h.HandleCallback)
}

// HandleLogin handles GET /login?returnTo=.
func (h *PublicHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := r.URL.Query().Get("returnTo")
	if raw == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, bodyMissingReturnTo))
		return
	}

	target, err := returnto.Validate(raw, h.trustedDomain)
	if err != nil {
		var rerr *returnto.Error
		reason := returnto.ReasonMalformed
		if errors.As(err, &rerr) {
			reason = rerr.Reason
		}
		h.logger.WarnContext(ctx, "rejected returnTo",
			"return_to", raw,
			"reason", string(reason),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, bodyInvalidReturnTo))
		return
	}

	pending, token, err := h.service.BeginPendingAuthorization(ctx, target)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start login", "error", err)
		httputil.WriteText(w, http.StatusInternalServerError, httputil.BodyInternal)
		return
	}

	http.SetCookie(w, h.cookies.Pending(token))
	h.metrics.IncrementLoginStarted()
	event := newEvent(ctx, audit.EventLoginStarted)
	event.ReturnHost = target.Hostname()
	h.auditor.Emit(ctx, event)
	redirect(w, h.service.AuthorizeURL(pending))
}

// HandleCallback handles the provider redirect. The pending cookie is
// cleared on every outcome.
func (h *PublicHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	http.SetCookie(w, h.cookies.ClearPending())

	pending, err := h.service.ResumePendingAuthorization(ctx, h.cookies.PendingToken(r))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			h.logger.ErrorContext(ctx, "failed to load pending authorization", "error", err)
		} else {
			h.logger.WarnContext(ctx, "callback without pending authorization", "error", err)
		}
		h.fail(ctx, metrics.OutcomeError, "no_pending_authorization")
		httputil.WriteText(w, http.StatusInternalServerError, httputil.BodyInternal)
		return
	}

	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		h.logger.WarnContext(ctx, "provider returned an error", "provider_error", providerErr)
		h.fail(ctx, metrics.OutcomeDenied, "provider_error")
		httputil.WriteText(w, http.StatusUnauthorized, httputil.BodyUnauthorized)
		return
	}

	sess, err := h.service.Authorize(ctx, pending, q.Get("state"), q.Get("code"))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.logger.WarnContext(ctx, "login denied", "error", err)
			h.fail(ctx, metrics.OutcomeDenied, reasonOf(err))
			httputil.WriteText(w, http.StatusUnauthorized, httputil.BodyUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to complete login", "error", err)
		h.fail(ctx, metrics.OutcomeError, reasonOf(err))
		httputil.WriteText(w, http.StatusInternalServerError, httputil.BodyInternal)
		return
	}

	http.SetCookie(w, h.cookies.Session(sess.ID))
	h.metrics.IncrementLoginCompleted(metrics.OutcomeAuthorized)
	event := newEvent(ctx, audit.EventSessionCreated)
	event.Subject = sess.Identity.Subject
	event.Email = sess.Identity.Email
	event.ReturnHost = hostOf(pending.ReturnTo)
	h.auditor.Emit(ctx, event)
	redirect(w, pending.ReturnTo)
}

func (h *PublicHandler) fail(ctx context.Context, outcome, reason string) {
	h.metrics.IncrementLoginCompleted(outcome)
	event := newEvent(ctx, audit.EventAuthFailed)
	event.Reason = reason
	h.auditor.Emit(ctx, event)
}

func newEvent(ctx context.Context, action audit.AuditEvent) audit.Event {
	return audit.Event{
		Action:    action,
		Timestamp: requestcontext.Now(ctx),
		IP:        requestcontext.ClientIP(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Client:    audit.DescribeClient(requestcontext.UserAgent(ctx)),
	}
}

// redirect sends a bodiless 302. http.Redirect would echo the target into an
// HTML body.
func redirect(w http.ResponseWriter, target string) {
	w.Header().Set("Location", target)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusFound)
}

func reasonOf(err error) string {
	var de *dErrors.Error
	if dErrors.As(err, &de) {
		return de.Message
	}
	return string(dErrors.CodeOf(err))
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
