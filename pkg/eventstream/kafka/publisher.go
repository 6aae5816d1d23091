// Package kafka publishes turn events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/glosshq/gloss/pkg/eventstream"
)

// Config is the configuration options for the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string

	// Topic is the topic turn events are written to.
	Topic string
}

// Publisher publishes turn events to Kafka through a shared async-safe writer.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher validates cfg and creates a publisher. The writer dials lazily,
// so construction never touches the network.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}

	if cfg.Topic == "" {
		return nil, fmt.Errorf("no kafka topic configured")
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
	}, nil
}

// Publish writes the event keyed by session so one session's turns stay
// ordered within a partition. Turns without a session key by event ID.
func (p *Publisher) Publish(ctx context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding turn event: %w", err)
	}

	key := event.Turn.SessionID
	if key == "" {
		key = event.EventID
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("publishing turn event: %w", err)
	}

	return nil
}

// Close flushes buffered messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
