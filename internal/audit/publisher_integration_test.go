package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const readTimeout = 30 * time.Second

func TestKafkaPublisher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tckafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("kindb-test"),
	)
	require.NoError(t, err, "Failed to start kafka container")

	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "Failed to resolve brokers")

	publisher := NewKafkaPublisher(brokers, DefaultTopic, nil)
	t.Cleanup(func() {
		_ = publisher.Close()
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		require.NoError(t, publisher.Publish(ctx, nil))
	})

	t.Run("events round trip keyed by fingerprint", func(t *testing.T) {
		want := []Event{
			NewEvent(ModelBot, 7, ActionCreate, "arc-bot", "fp-bot-7"),
			NewEvent(ModelSpecies, 11, ActionCreate, "arc-bot", "fp-species-11"),
		}

		require.NoError(t, publisher.Publish(ctx, want))

		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:   brokers,
			Topic:     DefaultTopic,
			Partition: 0,
		})
		t.Cleanup(func() {
			_ = reader.Close()
		})

		readCtx, cancel := context.WithTimeout(ctx, readTimeout)
		defer cancel()

		messages := make(map[string]kafka.Message, len(want))

		for range want {
			message, err := reader.ReadMessage(readCtx)
			require.NoError(t, err, "Failed to read message")

			var event Event
			require.NoError(t, json.Unmarshal(message.Value, &event))

			messages[event.Model] = message
		}

		for _, wantEvent := range want {
			message, ok := messages[wantEvent.Model]
			require.True(t, ok, "no message for model %s", wantEvent.Model)
			require.Equal(t, wantEvent.Key, string(message.Key), "message key should be the record fingerprint")

			var got Event
			require.NoError(t, json.Unmarshal(message.Value, &got))

			require.Equal(t, wantEvent.ID, got.ID)
			require.Equal(t, wantEvent.ModelID, got.ModelID)
			require.Equal(t, wantEvent.Action, got.Action)
			require.Equal(t, wantEvent.PerformedBy, got.PerformedBy)
			require.True(t, wantEvent.OccurredAt.Equal(got.OccurredAt), "OccurredAt should survive the round trip")
		}
	})
}
