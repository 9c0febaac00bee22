package outbox

import (
	"context"
	"log/slog"
)

// LogProducer writes events to the log. It stands in for a broker in local runs.
type LogProducer struct {
	Logger *slog.Logger
}

func (p LogProducer) Publish(_ context.Context, topic, key string, payload []byte, _ map[string]string) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("event published", "topic", topic, "key", key, "bytes", len(payload))
	return nil
}
