package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes.
const (
	OutcomeAuthorized = "authorized"
	OutcomeDenied     = "denied"
	OutcomeError      = "error"
)

// Session check outcomes.
const (
	CheckValid       = "valid"
	CheckMissing     = "missing"
	CheckInvalid     = "invalid"
	CheckUnavailable = "unavailable"
)

// Metrics provides observability for the login flow and the session check.
type Metrics struct {
	LoginsStarted        prometheus.Counter
	LoginsCompleted      *prometheus.CounterVec
	SessionChecks        *prometheus.CounterVec
	SessionCheckDuration prometheus.Histogram
}

// New registers the auth metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		LoginsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "gatekeeper_logins_started_total",
			Help: "Total number of login flows started",
		}),
		LoginsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_logins_completed_total",
			Help: "Total number of login callbacks by outcome",
		}, []string{"outcome"}),
		SessionChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_session_checks_total",
			Help: "Total number of session checks by outcome",
		}, []string{"outcome"}),
		SessionCheckDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatekeeper_session_check_duration_seconds",
			Help:    "Duration of session checks (auth_request critical path)",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// IncrementLoginStarted records a login redirected to the provider.
func (m *Metrics) IncrementLoginStarted() {
	if m == nil {
		return
	}
	m.LoginsStarted.Inc()
}

// IncrementLoginCompleted records a callback terminal state.
func (m *Metrics) IncrementLoginCompleted(outcome string) {
	if m == nil {
		return
	}
	m.LoginsCompleted.WithLabelValues(outcome).Inc()
}

// ObserveSessionCheck records one check's outcome and duration.
// Call with time.Now() taken at the start of the check.
func (m *Metrics) ObserveSessionCheck(outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.SessionChecks.WithLabelValues(outcome).Inc()
	m.SessionCheckDuration.Observe(time.Since(start).Seconds())
}
