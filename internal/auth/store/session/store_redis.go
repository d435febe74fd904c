package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gatekeeper/internal/auth/models"
	"gatekeeper/pkg/platform/sentinel"
)

// RedisStore is the production session store. Redis is the single source of
// truth shared by the public and private listeners; SET with EX and GETDEL
// give the per-key atomicity the gateway relies on.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOption configures a RedisStore instance.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces keys when the Redis database is shared.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedis constructs a Redis-backed session store.
func NewRedis(client *redis.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Save writes the session with a TTL. It returns only once Redis has
// acknowledged the write.
func (s *RedisStore) Save(ctx context.Context, sess *models.Session, ttl time.Duration) error {
	if err := checkTTL(ttl); err != nil {
		return err
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(s.prefix, sess.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// FindByID returns the live session or sentinel.ErrNotFound.
func (s *RedisStore) FindByID(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(s.prefix, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w: %w", sentinel.ErrUnavailable, err)
	}
	return decodeSession(raw)
}

// SavePending writes an in-flight login with a TTL.
func (s *RedisStore) SavePending(ctx context.Context, p *models.PendingAuthorization, ttl time.Duration) error {
	if err := checkTTL(ttl); err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending authorization: %w", err)
	}
	if err := s.client.Set(ctx, pendingKey(s.prefix, p.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save pending authorization: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// ConsumePending atomically reads and deletes an in-flight login, so two
// callbacks racing on the same pending id cannot both succeed.
func (s *RedisStore) ConsumePending(ctx context.Context, id string) (*models.PendingAuthorization, error) {
	raw, err := s.client.GetDel(ctx, pendingKey(s.prefix, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consume pending authorization: %w: %w", sentinel.ErrUnavailable, err)
	}
	return decodePending(raw)
}

// Health pings Redis.
func (s *RedisStore) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}
