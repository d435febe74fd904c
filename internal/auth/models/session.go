package models

import "time"

// PendingAuthorization is one in-flight login: the validated return target and
// the OAuth state sent to the provider. It is consumed by the callback exactly
// once, whatever the outcome.
type PendingAuthorization struct {
	ID        string    `json:"id"`
	ReturnTo  string    `json:"return_to"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the pending login has timed out at now.
func (p *PendingAuthorization) IsExpired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// Session is an authenticated login keyed by an opaque random id.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session is dead at now. A session is valid
// strictly before ExpiresAt.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTL is the remaining lifetime at now, never negative.
func (s *Session) TTL(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
