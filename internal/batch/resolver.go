// Package batch find-or-create resolution.
package batch

import (
	"context"
	"errors"
	"fmt"
)

type (
	// findFunc is an equivalence lookup bound to one item's key.
	findFunc func(ctx context.Context) (PersistentID, bool, error)

	// createFunc is an insert bound to one item's record.
	createFunc func(ctx context.Context) (PersistentID, error)
)

// resolveOrCreate resolves one deduplicated item to a persistent id:
//
//  1. Run the equivalence lookup. A hit resolves to the stored record.
//  2. Otherwise insert the record.
//  3. If the insert hits a uniqueness conflict, a concurrent request created
//     an equivalent record first. The failed insert is already discarded by
//     the Scope, so re-run the lookup and adopt the now-visible row. A miss
//     after a conflict should not occur and fails the batch.
//
// The conflict retry makes resolution idempotent under concurrent duplicate
// submissions only for kinds whose dedup key is backed by a storage
// uniqueness constraint. Kinds without one (authors, levels) never surface
// conflicts and can still race into duplicate rows.
//
// Returns the persistent id and whether this call created the record.
func resolveOrCreate(ctx context.Context, find findFunc, create createFunc) (PersistentID, bool, error) {
	id, found, err := find(ctx)
	if err != nil {
		return 0, false, failBatch(err)
	}

	if found {
		return id, false, nil
	}

	id, err = create(ctx)
	if err == nil {
		return id, true, nil
	}

	if !errors.Is(err, ErrConflict) {
		return 0, false, failBatch(err)
	}

	id, found, err = find(ctx)
	if err != nil {
		return 0, false, failBatch(err)
	}

	if !found {
		return 0, false, fmt.Errorf("%w: record not visible after uniqueness conflict", ErrBatchFailed)
	}

	return id, false, nil
}
