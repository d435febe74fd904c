package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// sessionIDBytes gives 256 bits of entropy per id.
const sessionIDBytes = 32

var sessionIDLen = base64.RawURLEncoding.EncodedLen(sessionIDBytes)

// newRandomID returns 32 random bytes, base64url without padding.
func newRandomID() (string, error) {
	b := make([]byte, sessionIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// wellFormedID reports whether id could have come from newRandomID.
func wellFormedID(id string) bool {
	if len(id) != sessionIDLen {
		return false
	}
	b, err := base64.RawURLEncoding.Strict().DecodeString(id)
	return err == nil && len(b) == sessionIDBytes
}
