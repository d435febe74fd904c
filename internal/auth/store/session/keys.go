package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gatekeeper/internal/auth/models"
	"gatekeeper/pkg/platform/sentinel"
)

const defaultKeyPrefix = "gatekeeper"

// hashKey derives the storage key from a bearer id. Stores never hold the raw
// session id, so a dump of the store cannot be replayed as cookies.
func hashKey(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

func sessionKey(prefix, id string) string {
	return prefix + ":session:" + hashKey(id)
}

func pendingKey(prefix, id string) string {
	return prefix + ":pending:" + hashKey(id)
}

func decodeSession(raw []byte) (*models.Session, error) {
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w: %w", sentinel.ErrCorrupt, err)
	}
	return &sess, nil
}

func decodePending(raw []byte) (*models.PendingAuthorization, error) {
	var p models.PendingAuthorization
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode pending authorization: %w: %w", sentinel.ErrCorrupt, err)
	}
	return &p, nil
}

func checkTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("refusing to store without expiry (ttl %s)", ttl)
	}
	return nil
}
