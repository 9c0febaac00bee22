package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"hotelfront/internal/domain/shared/events"
)

const DefaultSource = "app://hotelfront"

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Recorder counts relay attempts.
type Recorder interface {
	OutboxRelayed(err error)
}

// Worker relays due outbox records to the broker as CloudEvents. It drains
// the queue on every tick and whenever Flush is called.
type Worker struct {
	Store       Store
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	// MaxAttempts parks a record after that many failed publishes. Zero
	// retries forever.
	MaxAttempts int
	Logger      *slog.Logger
	Metrics     Recorder

	once sync.Once
	wake chan struct{}
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")

// Flush asks the worker to drain now. It never blocks.
func (w *Worker) Flush() {
	select {
	case w.kick() <- struct{}{}:
	default:
	}
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-w.kick():
		}
		w.drain(ctx)
	}
}

func (w *Worker) kick() chan struct{} {
	w.once.Do(func() { w.wake = make(chan struct{}, 1) })
	return w.wake
}

func (w *Worker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		more, err := w.processOnce(ctx)
		if err != nil {
			w.logger().Error("outbox relay failed", "error", err)
			return
		}
		if !more {
			return
		}
	}
}

// ErrMalformedPayload marks records that can never be published.
var ErrMalformedPayload = errors.New("outbox: payload is not valid JSON")

// processOnce relays a single record and reports whether one was due.
func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	rec, err := w.Store.Claim(ctx, w.ID)
	if err != nil || rec == nil {
		return false, err
	}
	payload, headers, err := w.envelope(rec)
	if err == nil {
		err = w.Producer.Publish(ctx, w.topicFor(rec.Name), rec.Aggregate, payload, headers)
	}
	if w.Metrics != nil {
		w.Metrics.OutboxRelayed(err)
	}
	switch {
	case err == nil:
		return true, w.Store.MarkSent(ctx, rec.ID)
	case errors.Is(err, ErrMalformedPayload) || w.exhausted(rec.Attempts+1):
		w.logger().Error("outbox record parked", "id", rec.ID, "event", rec.Name, "attempts", rec.Attempts+1, "error", err)
		return true, w.Store.MarkDead(ctx, rec.ID, err.Error())
	default:
		w.logger().Warn("outbox publish failed", "id", rec.ID, "event", rec.Name, "attempts", rec.Attempts+1, "error", err)
		return true, w.Store.MarkFailed(ctx, rec.ID, w.nextRetry(rec.Attempts), err.Error())
	}
}

func (w *Worker) exhausted(attempts int) bool {
	return w.MaxAttempts > 0 && attempts >= w.MaxAttempts
}

// cloudEvent is the structured-mode CloudEvents 1.0 envelope.
type cloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	TraceParent     string          `json:"traceparent,omitempty"`
	Data            json.RawMessage `json:"data"`
}

func (w *Worker) envelope(rec *Record) ([]byte, map[string]string, error) {
	if !json.Valid(rec.Payload) {
		return nil, nil, ErrMalformedPayload
	}
	evt := cloudEvent{
		SpecVersion:     "1.0",
		ID:              rec.ID,
		Type:            rec.Name + ".v1",
		Source:          w.source(),
		Subject:         rec.Aggregate,
		Time:            rec.OccurredAt,
		DataContentType: "application/json",
		TraceParent:     rec.Headers["traceparent"],
		Data:            rec.Payload,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := make(map[string]string, len(rec.Headers)+3)
	for k, v := range rec.Headers {
		headers[k] = v
	}
	headers["content-type"] = "application/cloudevents+json"
	headers["ce-id"] = evt.ID
	headers["ce-type"] = evt.Type
	return payload, headers, nil
}

// topicFor maps "booking.requested" to "booking.events.v1".
func (w *Worker) topicFor(name string) string {
	return w.TopicPrefix + events.Family(name) + ".events.v1"
}

// Topics lists the topics events of the given names are relayed to.
func Topics(prefix string, names ...string) []string {
	w := Worker{TopicPrefix: prefix}
	seen := map[string]bool{}
	var out []string
	for _, name := range names {
		topic := w.topicFor(name)
		if !seen[topic] {
			seen[topic] = true
			out = append(out, topic)
		}
	}
	return out
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return DefaultSource
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
