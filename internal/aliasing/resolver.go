package aliasing

import (
	"log/slog"

	"github.com/kindb-io/kindb/internal/batch"
	"github.com/kindb-io/kindb/internal/normalize"
)

// Resolver resolves method and basis set spellings through the configured
// alias tables. Thread-safe for concurrent use (immutable after construction).
//
// Lookups expect folded input: the batch pipeline folds level fields before
// applying aliases. Table entries are folded at construction, so the
// configuration file may use any casing.
type Resolver struct {
	methods map[string]string
	bases   map[string]string
}

// Compile-time check that Resolver satisfies the pipeline's alias hook.
var _ batch.Aliaser = (*Resolver)(nil)

// NewResolver creates a resolver from config with validation.
//
// Entries with an empty alias or canonical side are skipped with a warning;
// entries mapping a spelling to itself are dropped. If config is nil or has
// no aliases, returns a no-op resolver (passthrough).
func NewResolver(cfg *Config) *Resolver {
	if cfg == nil {
		return &Resolver{
			methods: map[string]string{},
			bases:   map[string]string{},
		}
	}

	return &Resolver{
		methods: compileAliases("method", cfg.MethodAliases),
		bases:   compileAliases("basis", cfg.BasisAliases),
	}
}

// compileAliases folds and validates one alias table.
func compileAliases(field string, aliases map[string]string) map[string]string {
	compiled := make(map[string]string, len(aliases))

	for alias, canonical := range aliases {
		foldedAlias := normalize.Fold(alias)
		foldedCanonical := normalize.Fold(canonical)

		if foldedAlias == "" || foldedCanonical == "" {
			slog.Warn("Skipping alias with an empty side",
				slog.String("field", field),
				slog.String("alias", alias),
				slog.String("canonical", canonical))

			continue
		}

		if foldedAlias == foldedCanonical {
			slog.Debug("Skipping self-referential alias",
				slog.String("field", field),
				slog.String("alias", foldedAlias))

			continue
		}

		compiled[foldedAlias] = foldedCanonical

		slog.Debug("Compiled alias",
			slog.String("field", field),
			slog.String("alias", foldedAlias),
			slog.String("canonical", foldedCanonical))
	}

	return compiled
}

// AliasCount returns the number of compiled alias entries.
func (r *Resolver) AliasCount() int {
	if r == nil {
		return 0
	}

	return len(r.methods) + len(r.bases)
}

// CanonicalMethod returns the canonical spelling of a folded method name.
// Names without a configured alias pass through unchanged.
func (r *Resolver) CanonicalMethod(method string) string {
	if r == nil || len(r.methods) == 0 || method == "" {
		return method
	}

	if canonical, ok := r.methods[method]; ok {
		return canonical
	}

	return method
}

// CanonicalBasis returns the canonical spelling of a folded basis set name.
// Names without a configured alias pass through unchanged.
func (r *Resolver) CanonicalBasis(basis string) string {
	if r == nil || len(r.bases) == 0 || basis == "" {
		return basis
	}

	if canonical, ok := r.bases[basis]; ok {
		return canonical
	}

	return basis
}
