package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

func TestEventCategory(t *testing.T) {
	assert.Equal(t, CategorySecurity, EventAuthFailed.Category())
	assert.Equal(t, CategoryOperations, EventSessionCreated.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("unknown").Category())
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))
	pub.now = fixedNow

	pub.Emit(context.Background(), Event{Action: EventAuthFailed, Reason: "email_not_allowed", Email: "intruder@example.com"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "audit", line["msg"])
	assert.Equal(t, "auth_failed", line["action"])
	assert.Equal(t, "security", line["category"])
	assert.Equal(t, "email_not_allowed", line["reason"])
}

type fakeProducer struct {
	mu       sync.Mutex
	records  []*kgo.Record
	failWith error
	flushed  bool
	closed   bool
}

func (f *fakeProducer) TryProduce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.mu.Lock()
	f.records = append(f.records, r)
	f.mu.Unlock()
	promise(r, f.failWith)
}

func (f *fakeProducer) Flush(context.Context) error {
	f.flushed = true
	return nil
}

func (f *fakeProducer) Close() { f.closed = true }

func TestKafkaPublisher(t *testing.T) {
	t.Run("encodes event as json record keyed by action", func(t *testing.T) {
		fp := &fakeProducer{}
		pub := newKafkaPublisher(fp, "gatekeeper.audit", slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
		pub.now = fixedNow

		pub.Emit(context.Background(), Event{Action: EventSessionCreated, Subject: "sub-1", ReturnHost: "app.trusted.example"})

		require.Len(t, fp.records, 1)
		rec := fp.records[0]
		assert.Equal(t, "gatekeeper.audit", rec.Topic)
		assert.Equal(t, "session_created", string(rec.Key))

		var got Event
		require.NoError(t, json.Unmarshal(rec.Value, &got))
		assert.Equal(t, EventSessionCreated, got.Action)
		assert.Equal(t, CategoryOperations, got.Category)
		assert.Equal(t, "sub-1", got.Subject)
		assert.True(t, got.Timestamp.Equal(fixedNow()))
	})

	t.Run("delivery failure is logged not returned", func(t *testing.T) {
		var logs bytes.Buffer
		fp := &fakeProducer{failWith: errors.New("broker down")}
		pub := newKafkaPublisher(fp, "gatekeeper.audit", slog.New(slog.NewTextHandler(&logs, nil)))

		pub.Emit(context.Background(), Event{Action: EventLoginStarted})

		assert.Contains(t, logs.String(), "failed to publish audit event")
		assert.Contains(t, logs.String(), "broker down")
	})

	t.Run("close flushes", func(t *testing.T) {
		fp := &fakeProducer{}
		pub := newKafkaPublisher(fp, "t", slog.Default())
		require.NoError(t, pub.Close(context.Background()))
		assert.True(t, fp.flushed)
		assert.True(t, fp.closed)
	})
}

func TestMultiFansOut(t *testing.T) {
	a, b := &fakeProducer{}, &fakeProducer{}
	m := Multi{
		newKafkaPublisher(a, "t", slog.Default()),
		newKafkaPublisher(b, "t", slog.Default()),
		Nop{},
	}
	m.Emit(context.Background(), Event{Action: EventLoginStarted})
	assert.Len(t, a.records, 1)
	assert.Len(t, b.records, 1)
}

func TestDescribeClient(t *testing.T) {
	chrome := "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	got := DescribeClient(chrome)
	assert.Contains(t, got, "Chrome/120.0.0.0")
	assert.Contains(t, got, "Linux")

	assert.Equal(t, "", DescribeClient("  "))
	assert.Contains(t, DescribeClient("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"), "bot: ")
}
