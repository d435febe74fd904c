// Package returnto validates post-login redirect targets.
//
// A target is accepted only when it is an absolute https URL whose host is
// the trusted domain or a subdomain of it. Matching is done on whole DNS
// labels: with trusted domain "trusted.example", "app.trusted.example" is
// accepted and "evil-trusted.example" is not.
package returnto

import (
	"fmt"
	"net/url"
	"strings"
)

// Reason enumerates why a candidate was rejected.
type Reason string

const (
	ReasonMalformed      Reason = "malformed"
	ReasonInsecureScheme Reason = "insecure_scheme"
	ReasonUntrustedHost  Reason = "untrusted_host"
)

// Error reports a rejected candidate. Candidate is the raw input and must only
// be logged, never written into a response.
type Error struct {
	Reason    Reason
	Candidate string
}

func (e *Error) Error() string {
	return fmt.Sprintf("returnTo rejected: %s", e.Reason)
}

// Validate returns the parsed candidate or an *Error.
func Validate(candidate, trustedDomain string) (*url.URL, error) {
	reject := func(r Reason) (*url.URL, error) {
		return nil, &Error{Reason: r, Candidate: candidate}
	}

	u, err := url.Parse(candidate)
	if err != nil || !u.IsAbs() || u.Opaque != "" || u.Host == "" {
		return reject(ReasonMalformed)
	}
	if u.Scheme != "https" {
		return reject(ReasonInsecureScheme)
	}
	if u.User != nil {
		return reject(ReasonUntrustedHost)
	}
	if !HostWithin(u.Hostname(), trustedDomain) {
		return reject(ReasonUntrustedHost)
	}
	return u, nil
}

// HostWithin reports whether host equals domain or is a subdomain of it.
// Comparison is case-insensitive and ignores a trailing root dot.
func HostWithin(host, domain string) bool {
	host = normalize(host)
	domain = normalize(strings.TrimPrefix(domain, "."))
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func normalize(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), ".")
}
