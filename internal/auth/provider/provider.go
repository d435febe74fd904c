// Package provider is the boundary to the identity provider.
package provider

import (
	"context"
	"errors"

	"gatekeeper/internal/auth/models"
)

// ErrExchange wraps every failure to turn an authorization code into an
// identity: network errors, rejected codes, denied consent, bad userinfo.
var ErrExchange = errors.New("provider exchange failed")

// DefaultScopes request identity claims only.
var DefaultScopes = []string{"openid", "email", "profile"}

// Provider is the capability the gateway needs from an OAuth2 identity
// provider. Implementations do not retry.
//
//go:generate mockgen -source=provider.go -destination=../mocks/provider_mock.go -package=mocks Provider
type Provider interface {
	// AuthorizeURL builds the consent-screen redirect carrying state.
	AuthorizeURL(state string, scopes []string) string
	// Exchange completes the code exchange and returns the authenticated identity.
	Exchange(ctx context.Context, code string) (*models.Identity, error)
}
