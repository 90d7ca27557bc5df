package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/kindb-io/kindb/internal/config"
)

// Kafka publisher configuration.
const (
	// BrokersEnvVar lists Kafka brokers, comma separated. Publishing is
	// enabled only when this is set.
	BrokersEnvVar = "KINDB_KAFKA_BROKERS"

	// TopicEnvVar overrides the audit topic name.
	TopicEnvVar = "KINDB_KAFKA_TOPIC"

	// DefaultTopic is the audit event topic.
	DefaultTopic = "kindb.audit"
)

// ErrPublishFailed is returned when audit events could not be published.
var ErrPublishFailed = errors.New("audit publish failed")

// Compile-time interface assertions.
var (
	_ Publisher = (*KafkaPublisher)(nil)
	_ Publisher = NopPublisher{}
)

// Publisher emits audit events after a batch commits.
//
// Implementations must tolerate being called with an empty slice. Callers
// treat errors as log-and-continue: a failed publish never fails the request
// whose commit produced the events.
type Publisher interface {
	// Publish emits the events.
	Publish(ctx context.Context, events []Event) error

	// Close releases publisher resources.
	Close() error
}

// KafkaPublisher publishes audit events to a Kafka topic, keyed by record
// fingerprint so all events for one record share a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a Kafka-backed audit publisher.
// Pass nil logger to use slog.Default().
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// Publish emits the events as one Kafka write.
func (p *KafkaPublisher) Publish(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(events))

	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("%w: marshal event: %w", ErrPublishFailed, err)
		}

		messages = append(messages, kafka.Message{
			Key:   []byte(event.Key),
			Value: payload,
		})
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	p.logger.Debug("Published audit events", slog.Int("count", len(messages)))

	return nil
}

// Close flushes and closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards audit events. Used when no brokers are configured;
// the in-transaction audit_logs rows remain the system of record.
type NopPublisher struct{}

// Publish discards the events.
func (NopPublisher) Publish(_ context.Context, _ []Event) error {
	return nil
}

// Close is a no-op.
func (NopPublisher) Close() error {
	return nil
}

// NewPublisherFromEnv creates a KafkaPublisher when KINDB_KAFKA_BROKERS is
// set, otherwise a NopPublisher.
func NewPublisherFromEnv(logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	brokers := config.GetEnvStr(BrokersEnvVar, "")
	if brokers == "" {
		logger.Debug("Kafka brokers not configured, audit events are not published")

		return NopPublisher{}
	}

	topic := config.GetEnvStr(TopicEnvVar, DefaultTopic)

	logger.Info("Kafka audit publisher enabled",
		slog.String("brokers", brokers),
		slog.String("topic", topic),
	)

	return NewKafkaPublisher(config.ParseCommaSeparatedList(brokers), topic, logger)
}
