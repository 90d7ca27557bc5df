// Package audit captures record write events.
//
// Storage writes an audit_logs row for every audited insert inside the batch
// transaction, so audit rows commit and roll back with the records they
// describe. After a successful commit the collected events are handed to a
// Publisher; publishing is best effort and never fails the request that
// produced the events.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audited actions.
const (
	// ActionCreate marks an insert of a new record.
	ActionCreate = "create"

	// ActionUpdate marks a modification of an existing record.
	ActionUpdate = "update"

	// ActionDelete marks a soft deletion.
	ActionDelete = "delete"
)

// Audited model names.
const (
	// ModelBot is the audited bot kind.
	ModelBot = "bot"

	// ModelSpecies is the audited species kind.
	ModelSpecies = "species"
)

// AnonymousActor is recorded when no authenticated client performed the write
// (authentication disabled or public route).
const AnonymousActor = "anonymous"

// Event is one audited record write.
type Event struct {
	// ID is the unique event id.
	ID uuid.UUID `json:"id"`

	// Model is the audited record kind, e.g. "bot" or "species".
	Model string `json:"model"`

	// ModelID is the persistent id of the written record.
	ModelID int64 `json:"modelId"`

	// Action is what happened: create, update, or delete.
	Action string `json:"action"`

	// PerformedBy identifies the client that performed the write.
	PerformedBy string `json:"performedBy"`

	// Key is a stable digest of the record's identity, used as the Kafka
	// message key so events for the same record land on one partition.
	Key string `json:"key"`

	// OccurredAt is when the write happened, UTC.
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent creates an audit event with a fresh id and the current time.
func NewEvent(model string, modelID int64, action, performedBy, key string) Event {
	return Event{
		ID:          uuid.New(),
		Model:       model,
		ModelID:     modelID,
		Action:      action,
		PerformedBy: performedBy,
		Key:         key,
		OccurredAt:  time.Now().UTC(),
	}
}

// actorContextKey is the context key type for the authenticated actor.
// Unexported type prevents collisions with keys from other packages.
type actorContextKey struct{}

// ContextWithActor returns a context carrying the authenticated client id.
// The auth middleware sets this; storage reads it when writing audit rows.
func ContextWithActor(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, clientID)
}

// ActorFromContext returns the authenticated client id from the context, or
// AnonymousActor when none was set.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorContextKey{}).(string); ok && actor != "" {
		return actor
	}

	return AnonymousActor
}
