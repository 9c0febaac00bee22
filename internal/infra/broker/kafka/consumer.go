package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type MessageHandler interface {
	Handle(ctx context.Context, msg *sarama.ConsumerMessage) error
}

// KeyValueHandler handles a message given only its key and value.
type KeyValueHandler interface {
	Handle(ctx context.Context, key string, payload []byte) error
}

// Adapt exposes a KeyValueHandler as a MessageHandler.
func Adapt(h KeyValueHandler) MessageHandler {
	return keyValueAdapter{h}
}

type keyValueAdapter struct{ h KeyValueHandler }

func (a keyValueAdapter) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return a.h.Handle(ctx, string(msg.Key), msg.Value)
}

type Consumer struct {
	group   sarama.ConsumerGroup
	handler MessageHandler
	logger  *slog.Logger
	retries int
	backoff time.Duration
}

func NewConsumer(brokers []string, groupID string, cfg *sarama.Config, handler MessageHandler, logger *slog.Logger) (*Consumer, error) {
	if cfg == nil {
		cfg = NewConfig(groupID)
	}
	g, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{group: g, handler: handler, logger: logger, retries: 3, backoff: 200 * time.Millisecond}, nil
}

func (c *Consumer) Run(ctx context.Context, topics []string) error {
	for {
		if err := c.group.Consume(ctx, topics, c.groupHandler()); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

func (c *Consumer) groupHandler() consumerGroupHandler {
	return consumerGroupHandler{handler: c.handler, logger: c.logger, retries: c.retries, backoff: c.backoff}
}

type consumerGroupHandler struct {
	handler MessageHandler
	logger  *slog.Logger
	retries int
	backoff time.Duration
}

func (h consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h consumerGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if !h.process(sess.Context(), message) {
			// rebalance or shutdown; leave the offset for the next owner
			return nil
		}
		sess.MarkMessage(message, "")
	}
	return nil
}

// process retries a failing message a few times, then logs and skips it so
// one bad message cannot stall the partition. It returns false when the
// session ended before the message was settled.
func (h consumerGroupHandler) process(ctx context.Context, msg *sarama.ConsumerMessage) bool {
	var err error
	for attempt := 0; attempt <= h.retries; attempt++ {
		if err = h.handler.Handle(ctx, msg); err == nil {
			return true
		}
		if attempt == h.retries {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(h.backoff * time.Duration(attempt+1)):
		}
	}
	h.logger.Error("kafka message dropped", "topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
	return true
}
