package models

import "strings"

// Identity is what the identity provider asserted about the user at login.
// It is stored inside a Session and never outlives it.
type Identity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	DisplayName   string `json:"name,omitempty"`
	GivenName     string `json:"given_name,omitempty"`
	FamilyName    string `json:"family_name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// EmailMatches compares the identity's email with an allow-listed address.
// Email addresses are compared case-insensitively, which is how every major
// provider treats them.
func (i Identity) EmailMatches(allowed string) bool {
	email := strings.TrimSpace(i.Email)
	allowed = strings.TrimSpace(allowed)
	return email != "" && strings.EqualFold(email, allowed)
}
