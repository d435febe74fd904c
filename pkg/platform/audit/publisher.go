// Package audit records security events from the login flow.
//
// Emission is best-effort: a failing sink is logged and never blocks or
// fails a login.
package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher emits audit events.
type Publisher interface {
	Emit(ctx context.Context, event Event)
}

// LogPublisher writes events to a structured logger.
type LogPublisher struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger, now: time.Now}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) {
	event = event.normalize(p.now)
	p.logger.InfoContext(ctx, "audit",
		"action", string(event.Action),
		"category", string(event.Category),
		"timestamp", event.Timestamp,
		"subject", event.Subject,
		"email", event.Email,
		"reason", event.Reason,
		"ip", event.IP,
		"client", event.Client,
		"return_host", event.ReturnHost,
	)
}

// Multi fans an event out to every publisher in order.
type Multi []Publisher

func (m Multi) Emit(ctx context.Context, event Event) {
	for _, p := range m {
		p.Emit(ctx, event)
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Emit(context.Context, Event) {}
