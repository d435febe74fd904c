// Package pendingtoken signs the pending-authorization cookie.
//
// The cookie carries only the pending id; the record itself lives in the
// session store. Signing with the shared session secret means a client cannot
// point the callback at a pending record it did not receive.
package pendingtoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "gatekeeper/pkg/domain-errors"
)

const audience = "gatekeeper-callback"

// Claims are the signed contents of a pending cookie.
type Claims struct {
	jwt.RegisteredClaims
}

// Signer issues and verifies pending tokens.
type Signer struct {
	key    []byte
	issuer string
}

// NewSigner creates a signer. key is the shared session secret.
func NewSigner(key []byte, issuer string) *Signer {
	return &Signer{key: key, issuer: issuer}
}

// Sign binds pendingID to an HS256 token that expires at expiresAt.
func (s *Signer) Sign(pendingID string, issuedAt, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        pendingID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign pending token")
	}
	return signed, nil
}

// Verify returns the pending id carried by token, checking signature,
// algorithm, issuer, audience and expiry against now.
func (s *Signer) Verify(token string, now time.Time) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	var claims Claims
	parsed, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", dErrors.New(dErrors.CodeInvalidState, "pending token has expired")
		}
		return "", dErrors.New(dErrors.CodeInvalidState, "invalid pending token")
	}
	if !parsed.Valid || claims.ID == "" {
		return "", dErrors.New(dErrors.CodeInvalidState, "invalid pending token")
	}
	return claims.ID, nil
}
