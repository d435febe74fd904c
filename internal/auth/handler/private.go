package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gatekeeper/internal/auth/cookie"
	"gatekeeper/internal/auth/metrics"
	"gatekeeper/internal/auth/models"
	dErrors "gatekeeper/pkg/domain-errors"
	"gatekeeper/pkg/platform/httputil"
)

// Identity headers for nginx auth_request_set.
const (
	HeaderAuthEmail   = "X-Auth-Email"
	HeaderAuthSubject = "X-Auth-Subject"
)

const healthTimeout = 2 * time.Second

// SessionValidator resolves a session id to an identity.
type SessionValidator interface {
	Validate(ctx context.Context, sessionID string) (*models.Identity, error)
}

// HealthChecker reports whether the session store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// PrivateHandler answers the reverse proxy's auth sub-requests.
type PrivateHandler struct {
	validator SessionValidator
	health    HealthChecker
	cookies   cookie.Policy
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewPrivate(validator SessionValidator, health HealthChecker, cookies cookie.Policy, logger *slog.Logger, m *metrics.Metrics) *PrivateHandler {
	return &PrivateHandler{
		validator: validator,
		health:    health,
		cookies:   cookies,
		logger:    logger,
		metrics:   m,
	}
}

// Register mounts the session check endpoints on the router.
func (h *PrivateHandler) Register(r chi.Router) {
	r.Get("/", h.HandleCheck)
	r.Get("/healthz", h.HandleHealth)
}

// HandleCheck handles GET /. 200 means the cookie names a live session.
// Any failure, including an unreachable store, is 401.
func (h *PrivateHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	w.Header().Set("Cache-Control", "no-store")

	sessionID := h.cookies.SessionID(r)
	if sessionID == "" {
		h.metrics.ObserveSessionCheck(metrics.CheckMissing, start)
		httputil.WriteText(w, http.StatusUnauthorized, httputil.BodyUnauthorized)
		return
	}

	identity, err := h.validator.Validate(ctx, sessionID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnavailable) {
			h.logger.ErrorContext(ctx, "session store unavailable", "error", err)
			h.metrics.ObserveSessionCheck(metrics.CheckUnavailable, start)
		} else {
			h.logger.DebugContext(ctx, "session rejected", "error", err)
			h.metrics.ObserveSessionCheck(metrics.CheckInvalid, start)
		}
		httputil.WriteText(w, http.StatusUnauthorized, httputil.BodyUnauthorized)
		return
	}

	w.Header().Set(HeaderAuthEmail, identity.Email)
	w.Header().Set(HeaderAuthSubject, identity.Subject)
	h.metrics.ObserveSessionCheck(metrics.CheckValid, start)
	httputil.WriteText(w, http.StatusOK, httputil.BodyOK)
}

// HandleHealth handles GET /healthz.
func (h *PrivateHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.health.Health(ctx); err != nil {
		h.logger.ErrorContext(ctx, "health check failed", "error", err)
		httputil.WriteText(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
		return
	}
	httputil.WriteText(w, http.StatusOK, httputil.BodyOK)
}
