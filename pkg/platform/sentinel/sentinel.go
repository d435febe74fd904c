package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: key does not exist in the store (never written, consumed, or TTL elapsed)
// - ErrExpired: record exists but its expiry has passed
// - ErrCorrupt: stored value could not be decoded
// - ErrUnavailable: store temporarily unreachable
//
// For client input failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrCorrupt     = errors.New("corrupt record")
	ErrUnavailable = errors.New("unavailable")
)
