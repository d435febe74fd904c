package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"gatekeeper/internal/auth/models"
	"gatekeeper/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in process memory with per-key expiry. It is
// for development and tests: state is lost on restart and is not shared
// between processes, so both listeners must run in the same process.
type InMemoryStore struct {
	cache  *ttlcache.Cache[string, []byte]
	prefix string
}

// NewInMemory starts the store's expiry loop. Call Close to stop it.
func NewInMemory() *InMemoryStore {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go cache.Start()

	return &InMemoryStore{cache: cache, prefix: defaultKeyPrefix}
}

// Values are stored encoded so callers never share a pointer with the store.

func (s *InMemoryStore) Save(_ context.Context, sess *models.Session, ttl time.Duration) error {
	if err := checkTTL(ttl); err != nil {
		return err
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	s.cache.Set(sessionKey(s.prefix, sess.ID), raw, ttl)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Session, error) {
	item := s.cache.Get(sessionKey(s.prefix, id))
	if item == nil || item.IsExpired() {
		return nil, sentinel.ErrNotFound
	}
	return decodeSession(item.Value())
}

func (s *InMemoryStore) SavePending(_ context.Context, p *models.PendingAuthorization, ttl time.Duration) error {
	if err := checkTTL(ttl); err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending authorization: %w", err)
	}
	s.cache.Set(pendingKey(s.prefix, p.ID), raw, ttl)
	return nil
}

func (s *InMemoryStore) ConsumePending(_ context.Context, id string) (*models.PendingAuthorization, error) {
	item, ok := s.cache.GetAndDelete(pendingKey(s.prefix, id))
	if !ok || item == nil || item.IsExpired() {
		return nil, sentinel.ErrNotFound
	}
	return decodePending(item.Value())
}

// Health always succeeds; there is nothing to reach.
func (s *InMemoryStore) Health(context.Context) error {
	return nil
}

// Len counts live keys, sessions and pending logins together.
func (s *InMemoryStore) Len() int {
	return s.cache.Len()
}

// Close stops the expiry loop.
func (s *InMemoryStore) Close() error {
	s.cache.Stop()
	return nil
}
