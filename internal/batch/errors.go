// Package batch error kinds. Any unrecovered error aborts and rolls back the
// entire batch; there is no partial success mode.
package batch

import (
	"errors"
	"fmt"
)

// Sentinel errors for batch resolution failures (matched with errors.Is).
var (
	// ErrDuplicateConnectionID indicates the caller reused a connection id
	// within one batch.
	ErrDuplicateConnectionID = errors.New("duplicate connection id")

	// ErrUnknownConnectionID indicates a reference to a connection id that
	// is not resolvable: never declared, declared under a different kind,
	// or declared for a kind whose stage runs later.
	ErrUnknownConnectionID = errors.New("unknown connection id")

	// ErrUnresolvedReference indicates a required reference field was
	// absent from the submitted item.
	ErrUnresolvedReference = errors.New("required reference is missing")

	// ErrConflict indicates a storage uniqueness conflict. For deduplicated
	// kinds the resolver absorbs it by re-running the equivalence lookup;
	// it only reaches the caller for kinds that are never merged, such as
	// a species label clash.
	ErrConflict = errors.New("record conflicts with an existing record")

	// ErrBatchFailed wraps any unexpected storage failure.
	ErrBatchFailed = errors.New("batch upload failed")
)

// Error is the structured failure of a batch upload, naming the stage and
// the connection id of the offending item alongside the underlying reason.
// One Error describes the first failure; everything the batch created before
// it is rolled back.
type Error struct {
	// Stage is the pipeline stage that failed.
	Stage Stage

	// ConnectionID identifies the offending item. Empty for failures not
	// attributable to a single item.
	ConnectionID string

	// Err is the underlying reason.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ConnectionID == "" {
		return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
	}

	return fmt.Sprintf("stage %s: connection id %q: %v", e.Stage, e.ConnectionID, e.Err)
}

// Unwrap exposes the underlying reason to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// failBatch wraps an unexpected storage error with ErrBatchFailed, unless it
// already carries that mark (nested resolution paths wrap before returning).
func failBatch(err error) error {
	if errors.Is(err, ErrBatchFailed) {
		return err
	}

	return fmt.Errorf("%w: %v", ErrBatchFailed, err)
}
