// Package batch storage interfaces.
//
// The domain package defines what it needs from storage without depending on
// a concrete implementation. The PostgreSQL implementation lives in
// internal/storage; tests use in-memory fakes.
package batch

import "context"

// Store provides the transactional boundary a batch runs inside.
//
// The domain package defines this interface so the pipeline can stay
// ignorant of drivers and savepoints. Implementations must guarantee that
// everything done through the Scope is atomic: if fn returns an error,
// nothing it created persists.
type Store interface {
	// WithScope runs fn inside one rollback-capable transaction boundary.
	//
	// The Scope handed to fn is only valid until fn returns. An error from
	// fn discards every write performed through the Scope and is returned
	// unchanged; a nil return commits them.
	WithScope(ctx context.Context, fn func(scope Scope) error) error
}

// Scope is the set of per-kind storage primitives available inside one batch
// transaction.
//
// Find* methods implement the equivalence lookups: they compare normalized
// key fields, exclude soft-deleted rows, and have no side effects. Create*
// methods insert one record and return its assigned persistent id; an insert
// that violates a uniqueness constraint fails with ErrConflict and must leave
// the transaction usable, so the resolver can re-run the lookup and adopt the
// row a concurrent request created.
type Scope interface {
	// FindAuthor looks up an author by its dedup key.
	FindAuthor(ctx context.Context, key AuthorKey) (PersistentID, bool, error)

	// CreateAuthor inserts a normalized author.
	CreateAuthor(ctx context.Context, author Author) (PersistentID, error)

	// FindLiterature looks up a literature entry by its dedup key.
	FindLiterature(ctx context.Context, key LiteratureKey) (PersistentID, bool, error)

	// CreateLiterature inserts a normalized literature entry. Inline
	// authors are not written here; the pipeline resolves them and links
	// with LinkLiteratureAuthor.
	CreateLiterature(ctx context.Context, literature Literature) (PersistentID, error)

	// LinkLiteratureAuthor writes one literature-author association row.
	LinkLiteratureAuthor(ctx context.Context, literatureID, authorID PersistentID) error

	// FindLevel looks up a level of theory by its dedup key.
	FindLevel(ctx context.Context, key LevelKey) (PersistentID, bool, error)

	// CreateLevel inserts a normalized level of theory.
	CreateLevel(ctx context.Context, level Level) (PersistentID, error)

	// FindBot looks up a bot by its dedup key.
	FindBot(ctx context.Context, key BotKey) (PersistentID, bool, error)

	// CreateBot inserts a normalized bot. Audited: the implementation
	// records the insert for audit capture.
	CreateBot(ctx context.Context, bot Bot) (PersistentID, error)

	// FindESS looks up a software descriptor by its dedup key.
	FindESS(ctx context.Context, key ESSKey) (PersistentID, bool, error)

	// CreateESS inserts a normalized software descriptor.
	CreateESS(ctx context.Context, ess ESS) (PersistentID, error)

	// CreateEnCorr inserts an energy correction set with resolved level
	// references.
	CreateEnCorr(ctx context.Context, record EnCorrRecord) (PersistentID, error)

	// CreateFreqScale inserts a frequency scaling factor with a resolved
	// level reference.
	CreateFreqScale(ctx context.Context, record FreqScaleRecord) (PersistentID, error)

	// CreateSpecies inserts a species with all references resolved.
	// Audited: the implementation records the insert for audit capture.
	CreateSpecies(ctx context.Context, record SpeciesRecord) (PersistentID, error)
}
