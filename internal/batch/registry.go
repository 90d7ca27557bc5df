// Package batch connection id registry.
package batch

import "fmt"

// registration records the persistent id assigned to a connection id and the
// stage that assigned it. Keeping the stage lets Resolve reject references to
// an id of the wrong kind instead of silently handing back a foreign id.
type registration struct {
	stage Stage
	id    PersistentID
}

// Registry is the request-scoped map from caller-supplied connection ids to
// assigned persistent ids. It lives for exactly one batch request and is
// discarded with the request; connection ids are never persisted.
//
// A Registry is exclusively owned by one request and is not safe for
// concurrent use.
type Registry struct {
	entries map[string]registration
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]registration),
	}
}

// Register records the persistent id assigned to a connection id during the
// given stage. Connection ids are unique across the whole batch, not per
// kind: reusing one, even for a different kind, fails with
// ErrDuplicateConnectionID.
func (r *Registry) Register(stage Stage, connectionID string, id PersistentID) error {
	if _, exists := r.entries[connectionID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateConnectionID, connectionID)
	}

	r.entries[connectionID] = registration{stage: stage, id: id}

	return nil
}

// Resolve returns the persistent id registered for a connection id of the
// expected kind. It fails with ErrUnknownConnectionID when the id was never
// registered (nonexistent, or its stage simply runs later) or when it was
// registered by a different stage.
func (r *Registry) Resolve(stage Stage, connectionID string) (PersistentID, error) {
	entry, exists := r.entries[connectionID]
	if !exists {
		return 0, fmt.Errorf("%w: %q is not resolvable at the %s stage", ErrUnknownConnectionID, connectionID, stage)
	}

	if entry.stage != stage {
		return 0, fmt.Errorf("%w: %q refers to a %s entry, not %s", ErrUnknownConnectionID, connectionID, entry.stage, stage)
	}

	return entry.id, nil
}

// ResolveOptional resolves an optional reference: a nil connection id passes
// through as nil, a present one must resolve like Resolve.
func (r *Registry) ResolveOptional(stage Stage, connectionID *string) (*PersistentID, error) {
	if connectionID == nil {
		return nil, nil
	}

	id, err := r.Resolve(stage, *connectionID)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

// Len returns the number of registered connection ids.
func (r *Registry) Len() int {
	return len(r.entries)
}
