package kafka

import (
	"context"
	"errors"
	"sort"

	"github.com/IBM/sarama"
)

var ErrNoBrokers = errors.New("kafka: no reachable brokers")

// Producer publishes outbox events synchronously. A message counts as sent
// once every in-sync replica acknowledged it.
type Producer struct {
	client   sarama.Client
	producer sarama.SyncProducer
}

func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = NewConfig("")
	}
	client, err := sarama.NewClient(brokers, cfg)
	if err != nil {
		return nil, err
	}
	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Producer{client: client, producer: producer}, nil
}

// Publish keys the message by aggregate id so events of one hotel or booking
// land on one partition in order.
func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := p.producer.SendMessage(message(topic, key, payload, headers))
	return err
}

// Ping reports whether the cluster metadata can be refreshed.
func (p *Producer) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.client.Closed() {
		return sarama.ErrClosedClient
	}
	if err := p.client.RefreshMetadata(); err != nil {
		return err
	}
	if len(p.client.Brokers()) == 0 {
		return ErrNoBrokers
	}
	return nil
}

func (p *Producer) Close() error {
	if p.producer == nil {
		return nil
	}
	// closing a producer built from a client leaves the client open
	return errors.Join(p.producer.Close(), p.client.Close())
}

func message(topic, key string, payload []byte, headers map[string]string) *sarama.ProducerMessage {
	names := make([]string, 0, len(headers))
	for k := range headers {
		names = append(names, k)
	}
	sort.Strings(names)
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Value:   sarama.ByteEncoder(payload),
		Headers: make([]sarama.RecordHeader, 0, len(names)),
	}
	for _, k := range names {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(headers[k])})
	}
	if key != "" {
		msg.Key = sarama.StringEncoder(key)
	}
	return msg
}
