// Package stream publishes scored-message events to Kafka for downstream
// consumers. The publisher is optional; the bot runs fine without brokers.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/chatrank/chatrank/internal/store"
)

// Publisher writes one Kafka message per persisted scored message.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a publisher for the given comma-separated broker list.
func NewPublisher(brokers, topic string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w}
}

// Publish sends one scored message event. Errors are returned for logging;
// callers must not let a publish failure reach the user path.
func (p *Publisher) Publish(ctx context.Context, row store.ScoredMessage) error {
	msg, err := encode(row)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("write score event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func encode(row store.ScoredMessage) (kafka.Message, error) {
	value, err := json.Marshal(row)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode score event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(row.UserID),
		Value: value,
		Time:  time.Now(),
	}, nil
}
