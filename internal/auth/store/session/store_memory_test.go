package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gatekeeper/internal/auth/models"
	"gatekeeper/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func (s *InMemoryStoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func newSession(id string) *models.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Session{
		ID:        id,
		Identity:  models.Identity{Subject: "sub-1", Email: "owner@trusted.example"},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func (s *InMemoryStoreSuite) TestSessionLookup() {
	ctx := context.Background()

	s.Run("returns stored session when found", func() {
		sess := newSession("session-a")
		s.Require().NoError(s.store.Save(ctx, sess, time.Hour))

		found, err := s.store.FindByID(ctx, sess.ID)
		s.Require().NoError(err)
		s.Equal(sess, found)
	})

	s.Run("returns a copy", func() {
		sess := newSession("session-b")
		s.Require().NoError(s.store.Save(ctx, sess, time.Hour))

		found, err := s.store.FindByID(ctx, sess.ID)
		s.Require().NoError(err)
		found.Identity.Email = "mutated@evil.example"

		again, err := s.store.FindByID(ctx, sess.ID)
		s.Require().NoError(err)
		s.Equal("owner@trusted.example", again.Identity.Email)
	})

	s.Run("returns ErrNotFound when session does not exist", func() {
		_, err := s.store.FindByID(ctx, "missing")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("pending ids do not resolve as sessions", func() {
		p := &models.PendingAuthorization{ID: "shared-id", ReturnTo: "https://app.trusted.example/"}
		s.Require().NoError(s.store.SavePending(ctx, p, time.Minute))

		_, err := s.store.FindByID(ctx, "shared-id")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestExpiry() {
	ctx := context.Background()
	sess := newSession("short-lived")
	s.Require().NoError(s.store.Save(ctx, sess, 50*time.Millisecond))

	_, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		_, err := s.store.FindByID(ctx, sess.ID)
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func (s *InMemoryStoreSuite) TestRefusesMissingTTL() {
	ctx := context.Background()
	s.Error(s.store.Save(ctx, newSession("no-ttl"), 0))
	s.Error(s.store.SavePending(ctx, &models.PendingAuthorization{ID: "p"}, -time.Second))
}

func (s *InMemoryStoreSuite) TestConsumePendingIsSingleUse() {
	ctx := context.Background()
	p := &models.PendingAuthorization{
		ID:       "pending-1",
		ReturnTo: "https://app.trusted.example/path",
		State:    "state-1",
	}
	s.Require().NoError(s.store.SavePending(ctx, p, time.Minute))

	const goroutines = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.store.ConsumePending(ctx, p.ID)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				s.Equal(p.ReturnTo, got.ReturnTo)
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes, "exactly one consumer should win")
	_, err := s.store.ConsumePending(ctx, p.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestHealth() {
	s.NoError(s.store.Health(context.Background()))
}
