package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gatekeeper/internal/auth/models"
	"gatekeeper/internal/auth/store/session"
	"gatekeeper/internal/platform/config"
	"gatekeeper/internal/platform/redis"
	"gatekeeper/pkg/platform/audit"
)

// sessionBackend is what both gateways need from the session store.
type sessionBackend interface {
	Save(ctx context.Context, sess *models.Session, ttl time.Duration) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	SavePending(ctx context.Context, p *models.PendingAuthorization, ttl time.Duration) error
	ConsumePending(ctx context.Context, id string) (*models.PendingAuthorization, error)
	Health(ctx context.Context) error
	Close() error
}

type redisBackend struct {
	*session.RedisStore
	client *redis.Client
}

func (b redisBackend) Close() error { return b.client.Close() }

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (sessionBackend, error) {
	switch cfg.Session.Store {
	case config.StoreMemory:
		log.Warn("using in-memory session store; sessions are lost on restart")
		return session.NewInMemory(), nil
	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return redisBackend{RedisStore: session.NewRedis(client.Client), client: client}, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

// newAuditor logs every event and, with brokers configured, also streams it
// to Kafka.
func newAuditor(cfg config.Audit, log *slog.Logger) (audit.Publisher, func(), error) {
	logPublisher := audit.NewLogPublisher(log)
	if len(cfg.KafkaBrokers) == 0 {
		return logPublisher, func() {}, nil
	}

	kafka, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := kafka.Close(ctx); err != nil {
			log.Warn("failed to flush audit events", "error", err)
		}
	}
	return audit.Multi{logPublisher, kafka}, closeFn, nil
}
