package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	event := NewEvent(ModelBot, 42, ActionCreate, "arc-bot", "fp-abc123")

	if event.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("event id not assigned")
	}

	if event.Model != ModelBot {
		t.Errorf("Model = %q, want %q", event.Model, ModelBot)
	}

	if event.ModelID != 42 {
		t.Errorf("ModelID = %d, want 42", event.ModelID)
	}

	if event.Action != ActionCreate {
		t.Errorf("Action = %q, want %q", event.Action, ActionCreate)
	}

	if event.PerformedBy != "arc-bot" {
		t.Errorf("PerformedBy = %q, want %q", event.PerformedBy, "arc-bot")
	}

	if event.Key != "fp-abc123" {
		t.Errorf("Key = %q, want %q", event.Key, "fp-abc123")
	}

	if event.OccurredAt.IsZero() {
		t.Error("OccurredAt not assigned")
	}

	if event.OccurredAt.Location() != time.UTC {
		t.Errorf("OccurredAt location = %v, want UTC", event.OccurredAt.Location())
	}

	second := NewEvent(ModelSpecies, 7, ActionCreate, AnonymousActor, "fp-def456")
	if second.ID == event.ID {
		t.Error("consecutive events share an id")
	}
}

func TestEventWireFormat(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	event := NewEvent(ModelSpecies, 99, ActionCreate, "rmg-importer", "fp-789")

	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	// Consumers depend on these key names
	for _, key := range []string{"id", "model", "modelId", "action", "performedBy", "key", "occurredAt"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("payload missing %q: %s", key, payload)
		}
	}
}

func TestActorContext(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{
			name: "authenticated client",
			ctx:  ContextWithActor(context.Background(), "arc-bot"),
			want: "arc-bot",
		},
		{
			name: "no actor set",
			ctx:  context.Background(),
			want: AnonymousActor,
		},
		{
			name: "empty client id",
			ctx:  ContextWithActor(context.Background(), ""),
			want: AnonymousActor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActorFromContext(tt.ctx); got != tt.want {
				t.Errorf("ActorFromContext() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNopPublisher(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	publisher := NopPublisher{}

	events := []Event{NewEvent(ModelBot, 1, ActionCreate, AnonymousActor, "fp")}
	if err := publisher.Publish(context.Background(), events); err != nil {
		t.Errorf("Publish() error = %v", err)
	}

	if err := publisher.Publish(context.Background(), nil); err != nil {
		t.Errorf("Publish(nil) error = %v", err)
	}

	if err := publisher.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNewPublisherFromEnv(t *testing.T) {
	if !testing.Short() {
		t.Skip("skipping unit test in non-short mode")
	}

	t.Run("no brokers configured", func(t *testing.T) {
		t.Setenv(BrokersEnvVar, "")

		publisher := NewPublisherFromEnv(nil)
		if _, ok := publisher.(NopPublisher); !ok {
			t.Errorf("NewPublisherFromEnv() = %T, want NopPublisher", publisher)
		}
	})

	t.Run("brokers configured", func(t *testing.T) {
		t.Setenv(BrokersEnvVar, "localhost:9092, localhost:9093")

		publisher := NewPublisherFromEnv(nil)

		kafkaPublisher, ok := publisher.(*KafkaPublisher)
		if !ok {
			t.Fatalf("NewPublisherFromEnv() = %T, want *KafkaPublisher", publisher)
		}

		_ = kafkaPublisher.Close()
	})
}
