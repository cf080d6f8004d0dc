// Package kafka publishes order events to a Kafka topic.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// HeaderEventType carries the event type on every message.
const HeaderEventType = "event-type"

var ErrNoBrokers = errors.New("kafka: no brokers configured")

// SplitBrokers parses a comma separated broker list, skipping blanks.
func SplitBrokers(brokersCSV string) []string {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Producer writes events to one topic. Messages with the same key go to the same
// partition.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	return &Producer{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}, nil
}

// Message builds the Kafka message for an event.
func Message(eventType, key string, body []byte, at time.Time) kafka.Message {
	return kafka.Message{
		Key:     []byte(key),
		Value:   body,
		Time:    at,
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(eventType)}},
	}
}

func (p *Producer) Publish(ctx context.Context, eventType, key string, body []byte) error {
	if err := p.writer.WriteMessages(ctx, Message(eventType, key, body, time.Now().UTC())); err != nil {
		return fmt.Errorf("failed to write %s to %s: %w", eventType, p.writer.Topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
