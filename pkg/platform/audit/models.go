package audit

import "time"

// EventCategory classifies audit events for routing and retention.
type EventCategory string

const (
	// CategorySecurity covers events relevant to security monitoring and forensics.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity.
	CategoryOperations EventCategory = "operations"
)

type AuditEvent string

const (
	EventLoginStarted   AuditEvent = "login_started"
	EventSessionCreated AuditEvent = "session_created"
	EventAuthFailed     AuditEvent = "auth_failed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAuthFailed:     CategorySecurity,
	EventLoginStarted:   CategoryOperations,
	EventSessionCreated: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted by the login flow. Keep it transport-agnostic so sinks
// can fan out.
type Event struct {
	Action    AuditEvent    `json:"action"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	Subject   string        `json:"subject,omitempty"` // provider subject when known
	Email     string        `json:"email,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	IP        string        `json:"ip,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	// Client is a short browser/OS description derived from the User-Agent.
	Client string `json:"client,omitempty"`
	// ReturnHost is the host of the validated return target, never the full URL.
	ReturnHost string `json:"return_host,omitempty"`
}

// normalize fills the derived fields.
func (e Event) normalize(now func() time.Time) Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = now()
	}
	if e.Category == "" {
		e.Category = e.Action.Category()
	}
	return e
}
