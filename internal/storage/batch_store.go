package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lib/pq"

	"github.com/kindb-io/kindb/internal/audit"
	"github.com/kindb-io/kindb/internal/batch"
	"github.com/kindb-io/kindb/internal/config"
)

var (
	// ErrBatchStoreFailed is returned when a batch storage operation fails
	// for a reason other than a uniqueness conflict.
	ErrBatchStoreFailed = errors.New("batch storage failed")

	// Compile-time interface assertions to ensure the PostgreSQL
	// implementation tracks the batch package contracts.
	_ batch.Store = (*BatchStore)(nil)
	_ batch.Scope = (*batchScope)(nil)
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = pq.ErrorCode("23505")

type (
	// BatchStore implements batch.Store with a PostgreSQL backend.
	//
	// Every batch runs inside a single transaction: either all records the
	// pipeline creates are committed together or none are. Uniqueness
	// conflicts inside the transaction are isolated with savepoints so the
	// resolver can retry the lookup without losing prior writes.
	BatchStore struct {
		conn      *Connection
		logger    *slog.Logger
		publisher audit.Publisher
	}

	// BatchStoreOption configures optional BatchStore behavior.
	BatchStoreOption func(*BatchStore)

	// batchScope implements batch.Scope for one transaction. It collects
	// audit events for the audited kinds and hands them back to the store
	// for publication after a successful commit.
	batchScope struct {
		tx     *sql.Tx
		logger *slog.Logger
		actor  string
		events []audit.Event
	}
)

// WithAuditPublisher sets the publisher that receives audit events after a
// batch commits. If not set, events are written to the audit_logs table only.
func WithAuditPublisher(p audit.Publisher) BatchStoreOption {
	return func(s *BatchStore) {
		s.publisher = p
	}
}

// NewBatchStore creates a PostgreSQL-backed batch store.
// Returns ErrNoDatabaseConnection if conn is nil.
func NewBatchStore(conn *Connection, opts ...BatchStoreOption) (*BatchStore, error) {
	if conn == nil {
		return nil, ErrNoDatabaseConnection
	}

	store := &BatchStore{
		conn: conn,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		})),
		publisher: audit.NopPublisher{},
	}

	for _, opt := range opts {
		opt(store)
	}

	return store, nil
}

// HealthCheck verifies the database connection is healthy and ready to
// serve requests. Used by the /ready endpoint and monitoring probes.
func (s *BatchStore) HealthCheck(ctx context.Context) error {
	if s.conn == nil {
		return ErrNoDatabaseConnection
	}

	return s.conn.HealthCheck(ctx)
}

// WithScope implements batch.Store.
//
// The scope handed to fn shares one transaction. An error from fn rolls
// everything back and is returned unchanged so the pipeline's structured
// errors survive intact. Audit events collected during the batch are
// published only after a successful commit.
func (s *BatchStore) WithScope(ctx context.Context, fn func(scope batch.Scope) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrBatchStoreFailed, err)
	}

	defer func() {
		_ = tx.Rollback() // Safe to call even after commit
	}()

	scope := &batchScope{
		tx:     tx,
		logger: s.logger,
		actor:  audit.ActorFromContext(ctx),
	}

	if err := fn(scope); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %w", ErrBatchStoreFailed, err)
	}

	s.publishAuditEvents(ctx, scope.events)

	return nil
}

// publishAuditEvents forwards committed audit events to the configured
// publisher. Publication is best-effort: the batch is already committed, so
// failures are logged and never surfaced to the caller. The durable audit
// trail is the audit_logs table, written in the batch transaction itself.
func (s *BatchStore) publishAuditEvents(ctx context.Context, events []audit.Event) {
	if len(events) == 0 {
		return
	}

	if err := s.publisher.Publish(ctx, events); err != nil {
		s.logger.Warn("failed to publish audit events",
			slog.Int("event_count", len(events)),
			slog.String("error", err.Error()),
		)
	}
}

// FindAuthor implements batch.Scope.
//
// Author matching has no backing uniqueness constraint, so this lookup is
// best effort: two concurrent batches can still race the same author into
// duplicate rows.
func (sc *batchScope) FindAuthor(ctx context.Context, key batch.AuthorKey) (batch.PersistentID, bool, error) {
	query := `
		SELECT id
		FROM authors
		WHERE first_name = $1
		  AND last_name = $2
		  AND orcid IS NOT DISTINCT FROM $3
		  AND deleted_at IS NULL
		ORDER BY id
		LIMIT 1
	`

	return sc.findOne(ctx, "author", query, key.FirstName, key.LastName, key.ORCID)
}

// CreateAuthor implements batch.Scope.
func (sc *batchScope) CreateAuthor(ctx context.Context, author batch.Author) (batch.PersistentID, error) {
	query := `
		INSERT INTO authors (first_name, last_name, orcid)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	return sc.savepointInsert(ctx, "author", func() (batch.PersistentID, error) {
		var id batch.PersistentID

		err := sc.tx.QueryRowContext(ctx, query, author.FirstName, author.LastName, author.ORCID).Scan(&id)

		return id, err
	})
}

// FindLiterature implements batch.Scope.
//
// The key is the (doi, isbn) pair compared NULL-safe: an entry with a DOI
// and no ISBN only matches rows where isbn is also NULL. Entries with
// neither identifier never reach this lookup; the pipeline always creates
// them.
func (sc *batchScope) FindLiterature(ctx context.Context, key batch.LiteratureKey) (batch.PersistentID, bool, error) {
	query := `
		SELECT id
		FROM literature
		WHERE doi IS NOT DISTINCT FROM $1
		  AND isbn IS NOT DISTINCT FROM $2
		  AND deleted_at IS NULL
		ORDER BY id
		LIMIT 1
	`

	return sc.findOne(ctx, "literature", query, key.DOI, key.ISBN)
}

// CreateLiterature implements batch.Scope.
func (sc *batchScope) CreateLiterature(ctx context.Context, literature batch.Literature) (batch.PersistentID, error) {
	query := `
		INSERT INTO literature (
			type, title, year,
			journal, publisher, volume, issue, page_start, page_end,
			editors, edition, chapter_title, publication_place, advisor,
			doi, isbn, url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`

	return sc.savepointInsert(ctx, "literature", func() (batch.PersistentID, error) {
		var id batch.PersistentID

		err := sc.tx.QueryRowContext(ctx, query,
			string(literature.Type), literature.Title, literature.Year,
			literature.Journal, literature.Publisher, literature.Volume, literature.Issue,
			literature.PageStart, literature.PageEnd,
			literature.Editors, literature.Edition, literature.ChapterTitle,
			literature.PublicationPlace, literature.Advisor,
			literature.DOI, literature.ISBN, literature.URL,
		).Scan(&id)

		return id, err
	})
}

// LinkLiteratureAuthor implements batch.Scope.
// Re-linking an existing pair is a no-op so a literature entry adopted from
// an earlier batch can be linked again without conflict.
func (sc *batchScope) LinkLiteratureAuthor(ctx context.Context, literatureID, authorID batch.PersistentID) error {
	query := `
		INSERT INTO literature_authors (literature_id, author_id)
		VALUES ($1, $2)
		ON CONFLICT (literature_id, author_id) DO NOTHING
	`

	if _, err := sc.tx.ExecContext(ctx, query, literatureID, authorID); err != nil {
		return fmt.Errorf("%w: failed to link literature author: %w", ErrBatchStoreFailed, err)
	}

	return nil
}

// FindLevel implements batch.Scope.
//
// The nine-field key is too wide for a database constraint, so like authors
// this lookup is best effort under concurrency.
func (sc *batchScope) FindLevel(ctx context.Context, key batch.LevelKey) (batch.PersistentID, bool, error) {
	query := `
		SELECT id
		FROM levels
		WHERE method = $1
		  AND basis IS NOT DISTINCT FROM $2
		  AND auxiliary_basis IS NOT DISTINCT FROM $3
		  AND dispersion IS NOT DISTINCT FROM $4
		  AND grid IS NOT DISTINCT FROM $5
		  AND solvent IS NOT DISTINCT FROM $6
		  AND solvation_method IS NOT DISTINCT FROM $7
		  AND solvation_description IS NOT DISTINCT FROM $8
		  AND level_arguments IS NOT DISTINCT FROM $9
		  AND deleted_at IS NULL
		ORDER BY id
		LIMIT 1
	`

	return sc.findOne(ctx, "level", query,
		key.Method, key.Basis, key.AuxiliaryBasis, key.Dispersion, key.Grid,
		key.Solvent, key.SolvationMethod, key.SolvationDescription, key.LevelArguments,
	)
}

// CreateLevel implements batch.Scope.
func (sc *batchScope) CreateLevel(ctx context.Context, level batch.Level) (batch.PersistentID, error) {
	query := `
		INSERT INTO levels (
			method, basis, auxiliary_basis, dispersion, grid,
			solvent, solvation_method, solvation_description, level_arguments
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	return sc.savepointInsert(ctx, "level", func() (batch.PersistentID, error) {
		var id batch.PersistentID

		err := sc.tx.QueryRowContext(ctx, query,
			level.Method, level.Basis, level.AuxiliaryBasis, level.Dispersion, level.Grid,
			level.Solvent, level.SolvationMethod, level.SolvationDescription, level.LevelArguments,
		).Scan(&id)

		return id, err
	})
}

// FindBot implements batch.Scope.
func (sc *batchScope) FindBot(ctx context.Context, key batch.BotKey) (batch.PersistentID, bool, error) {
	query := `
		SELECT id
		FROM bots
		WHERE name = $1
		  AND version = $2
		  AND url = $3
		  AND git_hash IS NOT DISTINCT FROM $4
		  AND git_branch IS NOT DISTINCT FROM $5
		  AND deleted_at IS NULL
		ORDER BY id
		LIMIT 1
	`

	return sc.findOne(ctx, "bot", query, key.Name, key.Version, key.URL, key.GitHash, key.GitBranch)
}

// CreateBot implements batch.Scope.
//
// Bots carry the _bot_name_version_uc constraint, so this is the one kind
// where a concurrent duplicate reliably surfaces as ErrConflict and the
// resolver's retry path adopts the winning row.
func (sc *batchScope) CreateBot(ctx context.Context, bot batch.Bot) (batch.PersistentID, error) {
	query := `
		INSERT INTO bots (name, version, url, git_hash, git_branch)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	id, err := sc.savepointInsert(ctx, "bot", func() (batch.PersistentID, error) {
		var id batch.PersistentID

		err := sc.tx.QueryRowContext(ctx, query,
			bot.Name, bot.Version, bot.URL, bot.GitHash, bot.GitBranch,
		).Scan(&id)

		return id, err
	})
	if err != nil {
		return 0, err
	}

	changes := map[string]any{
		"name":    bot.Name,
		"version": bot.Version,
		"url":     bot.URL,
	}
	if err := sc.recordAudit(ctx, audit.ModelBot, id, changes, bot.MatchKey().Fingerprint()); err != nil {
		return 0, err
	}

	return id, nil
}

// FindESS implements batch.Scope.
func (sc *batchScope) FindESS(ctx context.Context, key batch.ESSKey) (batch.PersistentID, bool, error) {
	query := `
		SELECT id
		FROM ess
		WHERE name = $1
		  AND version IS NOT DISTINCT FROM $2
		  AND revision IS NOT DISTINCT FROM $3
		  AND url = $4
		  AND deleted_at IS NULL
		ORDER BY id
		LIMIT 1
	`

	return sc.findOne(ctx, "ess", query, key.Name, key.Version, key.Revision, key.URL)
}

// CreateESS implements batch.Scope.
//
// The ess table enforces UNIQUE (name), narrower than the four-field dedup
// key. A same-named descriptor with a different version therefore conflicts
// here even though the lookup missed; the resolver's retry then adopts the
// existing row. Known source behavior, kept as is.
func (sc *batchScope) CreateESS(ctx context.Context, ess batch.ESS) (batch.PersistentID, error) {
	query := `
		INSERT INTO ess (name, version, revision, url)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	return sc.savepointInsert(ctx, "ess", func() (batch.PersistentID, error) {
		var id batch.PersistentID

		err := sc.tx.QueryRowContext(ctx, query, ess.Name, ess.Version, ess.Revision, ess.URL).Scan(&id)

		return id, err
	})
}

// CreateEnCorr implements batch.Scope.
// Energy corrections are never deduplicated, so no savepoint is needed.
func (sc *batchScope) CreateEnCorr(ctx context.Context, record batch.EnCorrRecord) (batch.PersistentID, error) {
	aec, err := jsonbOrNull(record.AEC, len(record.AEC) > 0)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to encode atom energy corrections: %w", ErrBatchStoreFailed, err)
	}

	bac, err := jsonbOrNull(record.BAC, len(record.BAC) > 0)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to encode bond additivity corrections: %w", ErrBatchStoreFailed, err)
	}

	reactions, err := jsonbOrNull(record.IsodesmicReactions, len(record.IsodesmicReactions) > 0)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to encode isodesmic reactions: %w", ErrBatchStoreFailed, err)
	}

	query := `
		INSERT INTO encorrs (
			level_id, isodesmic_high_level_id,
			supported_elements, energy_unit, aec, bac, isodesmic_reactions
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id batch.PersistentID

	err = sc.tx.QueryRowContext(ctx, query,
		record.LevelID, record.IsodesmicHighLevelID,
		pq.Array(record.SupportedElements), record.EnergyUnit,
		aec, bac, reactions,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create energy correction: %w", ErrBatchStoreFailed, err)
	}

	return id, nil
}

// CreateFreqScale implements batch.Scope.
// Scaling factors are never deduplicated: resubmitting a batch appends a new
// factor for the same level.
func (sc *batchScope) CreateFreqScale(ctx context.Context, record batch.FreqScaleRecord) (batch.PersistentID, error) {
	query := `
		INSERT INTO freq_scales (factor, level_id, source)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id batch.PersistentID

	err := sc.tx.QueryRowContext(ctx, query, record.Factor, record.LevelID, record.Source).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create frequency scale: %w", ErrBatchStoreFailed, err)
	}

	return id, nil
}

// CreateSpecies implements batch.Scope.
//
// Species are not deduplicated, but the live-label unique index can still
// reject the insert. That conflict is mapped to ErrConflict without a
// savepoint: species is the last stage, there is no retry path, and the
// batch fails as a whole.
func (sc *batchScope) CreateSpecies(ctx context.Context, record batch.SpeciesRecord) (batch.PersistentID, error) {
	coordinates, err := json.Marshal(record.Coordinates)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to encode coordinates: %w", ErrBatchStoreFailed, err)
	}

	frequencies, err := jsonbOrNull(record.Frequencies, len(record.Frequencies) > 0)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to encode frequencies: %w", ErrBatchStoreFailed, err)
	}

	scaled, err := jsonbOrNull(record.ScaledProjectedFrequencies, len(record.ScaledProjectedFrequencies) > 0)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to encode scaled frequencies: %w", ErrBatchStoreFailed, err)
	}

	modes, err := jsonbOrNull(record.NormalDisplacementModes, len(record.NormalDisplacementModes) > 0)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to encode normal displacement modes: %w", ErrBatchStoreFailed, err)
	}

	hessian, err := jsonbOrNull(record.Hessian, len(record.Hessian) > 0)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to encode hessian: %w", ErrBatchStoreFailed, err)
	}

	query := `
		INSERT INTO species (
			label, smiles, inchi, charge, multiplicity,
			coordinates, external_symmetry, point_group, conformation_method, is_well,
			electronic_energy, e0,
			frequencies, scaled_projected_frequencies, normal_displacement_modes, hessian,
			opt_level_id, freq_level_id, scan_level_id, irc_level_id, sp_level_id,
			opt_ess_id, freq_ess_id, scan_ess_id, irc_ess_id, sp_ess_id,
			literature_id, bot_id, encorr_id, freq_scale_id
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30
		)
		RETURNING id
	`

	var id batch.PersistentID

	err = sc.tx.QueryRowContext(ctx, query,
		record.Label, record.SMILES, record.InChI, record.Charge, record.Multiplicity,
		coordinates, record.ExternalSymmetry, record.PointGroup, record.ConformationMethod, record.IsWell,
		record.ElectronicEnergy, record.E0,
		frequencies, scaled, modes, hessian,
		record.OptLevelID, record.FreqLevelID, record.ScanLevelID, record.IRCLevelID, record.SPLevelID,
		record.OptESSID, record.FreqESSID, record.ScanESSID, record.IRCESSID, record.SPESSID,
		record.LiteratureID, record.BotID, record.EnCorrID, record.FreqScaleID,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return 0, fmt.Errorf("%w: species label %q already exists: %w", batch.ErrConflict, record.Label, err)
		}

		return 0, fmt.Errorf("%w: failed to create species: %w", ErrBatchStoreFailed, err)
	}

	changes := map[string]any{
		"label":        record.Label,
		"charge":       record.Charge,
		"multiplicity": record.Multiplicity,
		"is_well":      record.IsWell,
	}
	if err := sc.recordAudit(ctx, audit.ModelSpecies, id, changes, record.Fingerprint()); err != nil {
		return 0, err
	}

	return id, nil
}

// findOne runs a single-row id lookup and reports whether a row matched.
func (sc *batchScope) findOne(
	ctx context.Context,
	kind, query string,
	args ...any,
) (batch.PersistentID, bool, error) {
	var id batch.PersistentID

	err := sc.tx.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("%w: failed to look up %s: %w", ErrBatchStoreFailed, kind, err)
	}

	return id, true, nil
}

// savepointInsert runs insert inside a savepoint so a unique violation can
// be rolled back without aborting the surrounding transaction. PostgreSQL
// otherwise refuses every statement after the first error, which would make
// the resolver's conflict-retry impossible.
func (sc *batchScope) savepointInsert(
	ctx context.Context,
	kind string,
	insert func() (batch.PersistentID, error),
) (batch.PersistentID, error) {
	if _, err := sc.tx.ExecContext(ctx, "SAVEPOINT create_record"); err != nil {
		return 0, fmt.Errorf("%w: failed to set savepoint: %w", ErrBatchStoreFailed, err)
	}

	id, err := insert()
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			if _, rbErr := sc.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT create_record"); rbErr != nil {
				return 0, fmt.Errorf("%w: failed to roll back savepoint: %w", ErrBatchStoreFailed, rbErr)
			}

			sc.logger.Debug("insert conflicted with existing record",
				slog.String("kind", kind),
				slog.String("constraint", pqErr.Constraint),
			)

			return 0, fmt.Errorf("%w: %w", batch.ErrConflict, err)
		}

		return 0, fmt.Errorf("%w: failed to create %s: %w", ErrBatchStoreFailed, kind, err)
	}

	if _, err := sc.tx.ExecContext(ctx, "RELEASE SAVEPOINT create_record"); err != nil {
		return 0, fmt.Errorf("%w: failed to release savepoint: %w", ErrBatchStoreFailed, err)
	}

	return id, nil
}

// recordAudit writes the in-transaction audit row for an audited kind and
// queues the matching event for post-commit publication. The row commits or
// rolls back with the batch, so the table never references a record that
// was discarded.
func (sc *batchScope) recordAudit(
	ctx context.Context,
	model string,
	modelID batch.PersistentID,
	changes map[string]any,
	key string,
) error {
	changesJSON, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("%w: failed to encode audit changes: %w", ErrBatchStoreFailed, err)
	}

	query := `
		INSERT INTO audit_logs (model, model_id, action, changes, performed_by)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := sc.tx.ExecContext(ctx, query, model, modelID, audit.ActionCreate, changesJSON, sc.actor); err != nil {
		return fmt.Errorf("%w: failed to write audit log: %w", ErrBatchStoreFailed, err)
	}

	sc.events = append(sc.events, audit.NewEvent(model, int64(modelID), audit.ActionCreate, sc.actor, key))

	return nil
}

// jsonbOrNull encodes v for a nullable jsonb column. When present is false
// the column gets SQL NULL instead of an empty JSON document.
func jsonbOrNull(v any, present bool) (sql.NullString, error) {
	if !present {
		return sql.NullString{}, nil
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}

	return sql.NullString{String: string(encoded), Valid: true}, nil
}
