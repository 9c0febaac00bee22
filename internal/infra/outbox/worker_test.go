package outbox_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "hotelfront/internal/app/outbox"
	"hotelfront/internal/infra/outbox"
	"hotelfront/internal/infra/storage/memory"
)

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	mu   sync.Mutex
	fail error
	sent []published
}

func (p *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.sent = append(p.sent, published{topic, key, payload, headers})
	return nil
}

func (p *fakeProducer) messages() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.sent...)
}

type relayCount struct {
	mu         sync.Mutex
	ok, failed int
}

func (r *relayCount) OutboxRelayed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failed++
		return
	}
	r.ok++
}

func addEvent(t *testing.T, box *memory.Outbox, id string) {
	t.Helper()
	require.NoError(t, box.Add(context.Background(), appoutbox.EventRecord{
		ID:         id,
		Name:       "hotel.created",
		Payload:    []byte(`{"hotelId":"h1"}`),
		OccurredAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Aggregate:  "h1",
		Headers:    map[string]string{"traceparent": "00-abc-def-01"},
	}))
}

func TestWorkerPublishesCloudEventOnFlush(t *testing.T) {
	box := memory.NewOutbox()
	producer := &fakeProducer{}
	metrics := &relayCount{}
	w := &outbox.Worker{Store: box, Producer: producer, Interval: time.Hour, TopicPrefix: "hf.", Metrics: metrics}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	addEvent(t, box, "evt-1")
	addEvent(t, box, "evt-2")
	w.Flush()

	require.Eventually(t, func() bool { return len(producer.messages()) == 2 }, time.Second, 5*time.Millisecond)
	msg := producer.messages()[0]
	assert.Equal(t, "hf.hotel.events.v1", msg.topic)
	assert.Equal(t, "h1", msg.key)
	assert.Equal(t, "application/cloudevents+json", msg.headers["content-type"])
	assert.Equal(t, "00-abc-def-01", msg.headers["traceparent"])

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &envelope))
	assert.Equal(t, "evt-1", envelope["id"])
	assert.Equal(t, "hotel.created.v1", envelope["type"])
	assert.Equal(t, outbox.DefaultSource, envelope["source"])
	assert.Equal(t, "h1", envelope["subject"])
	assert.Equal(t, map[string]any{"hotelId": "h1"}, envelope["data"])

	require.Eventually(t, func() bool { return allInState(box, outbox.StateSent) }, time.Second, 5*time.Millisecond)
	metrics.mu.Lock()
	assert.Equal(t, 2, metrics.ok)
	metrics.mu.Unlock()
}

func TestWorkerBacksOffOnPublishFailure(t *testing.T) {
	box := memory.NewOutbox()
	producer := &fakeProducer{fail: errors.New("broker down")}
	w := &outbox.Worker{Store: box, Producer: producer, Interval: time.Hour, Backoff: []time.Duration{time.Hour}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	addEvent(t, box, "evt-1")
	w.Flush()

	require.Eventually(t, func() bool {
		recs := box.Records()
		return len(recs) == 1 && recs[0].State == outbox.StateFailed
	}, time.Second, 5*time.Millisecond)
	rec := box.Records()[0]
	assert.Equal(t, 1, rec.Attempts)
	assert.Equal(t, "broker down", rec.LastError)
	assert.True(t, rec.NextAttempt.After(time.Now().Add(50*time.Minute)))
}

func allInState(box *memory.Outbox, state string) bool {
	for _, rec := range box.Records() {
		if rec.State != state {
			return false
		}
	}
	return true
}

func TestWorkerParksRecordAfterMaxAttempts(t *testing.T) {
	box := memory.NewOutbox()
	producer := &fakeProducer{fail: errors.New("broker down")}
	w := &outbox.Worker{Store: box, Producer: producer, Interval: time.Hour, MaxAttempts: 1}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	addEvent(t, box, "evt-1")
	w.Flush()

	require.Eventually(t, func() bool { return allInState(box, outbox.StateDead) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, box.Records()[0].Attempts)
}

func TestWorkerParksMalformedPayloadWithoutPublishing(t *testing.T) {
	box := memory.NewOutbox()
	producer := &fakeProducer{}
	w := &outbox.Worker{Store: box, Producer: producer, Interval: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "bad", Name: "hotel.created", Payload: []byte("{")}))
	w.Flush()

	require.Eventually(t, func() bool { return allInState(box, outbox.StateDead) }, time.Second, 5*time.Millisecond)
	assert.Empty(t, producer.messages())
	assert.Equal(t, outbox.ErrMalformedPayload.Error(), box.Records()[0].LastError)
}

func TestWorkerRequiresDependencies(t *testing.T) {
	err := (&outbox.Worker{}).Run(context.Background())
	assert.ErrorIs(t, err, outbox.ErrWorkerNotConfigured)
}

func TestFlushNeverBlocks(t *testing.T) {
	w := &outbox.Worker{}
	for i := 0; i < 10; i++ {
		w.Flush()
	}
}

func TestTopics(t *testing.T) {
	topics := outbox.Topics("hf.", "hotel.created", "review.submitted", "hotel.updated")
	assert.Equal(t, []string{"hf.hotel.events.v1", "hf.review.events.v1"}, topics)
}
