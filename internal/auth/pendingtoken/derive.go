package pendingtoken

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keyInfo = "gatekeeper pending-token v1"

// DeriveKey expands the shared session secret into a signing key dedicated
// to pending tokens.
func DeriveKey(secret []byte) ([]byte, error) {
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive pending-token key: %w", err)
	}
	return key, nil
}
