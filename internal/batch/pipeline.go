package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Pipeline runs validated batches through the fixed stage order inside one
// transaction scope. Each stage fully resolves and flushes its items before
// the next stage starts, so later stages always see earlier stages' registry
// entries regardless of declaration order within a stage.
//
// A Pipeline is stateless across batches and safe for concurrent use; all
// per-request state lives in the Registry and Scope created per Run.
type Pipeline struct {
	store   Store
	aliaser Aliaser
	logger  *slog.Logger
}

// NewPipeline creates a Pipeline on the given store. The aliaser is
// optional: nil means level names are compared as folded, without alias
// mapping. A nil logger falls back to slog.Default().
func NewPipeline(store Store, aliaser Aliaser, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		store:   store,
		aliaser: aliaser,
		logger:  logger,
	}
}

// Run resolves and persists one batch atomically.
//
// The batch must already be validated (see Validator). Run normalizes key
// fields of the submitted items in place. On success every item is
// persisted and the result lists the created species ids in submission
// order. On failure nothing persists and the returned error is an *Error
// naming the failing stage and connection id.
func (p *Pipeline) Run(ctx context.Context, b *Batch) (*Result, error) {
	if b == nil {
		return nil, ErrNilBatch
	}

	result := &Result{SpeciesIDs: []PersistentID{}}

	var registered int

	err := p.store.WithScope(ctx, func(scope Scope) error {
		run := &stageRun{
			scope:    scope,
			registry: NewRegistry(),
			aliaser:  p.aliaser,
			logger:   p.logger,
		}

		if err := run.authors(ctx, b.Authors); err != nil {
			return err
		}

		if err := run.literature(ctx, b.Literature); err != nil {
			return err
		}

		if err := run.levels(ctx, b.Levels); err != nil {
			return err
		}

		if err := run.bots(ctx, b.Bots); err != nil {
			return err
		}

		if err := run.ess(ctx, b.ESS); err != nil {
			return err
		}

		if err := run.enCorrs(ctx, b.EnCorrs); err != nil {
			return err
		}

		if err := run.freqScales(ctx, b.FreqScales); err != nil {
			return err
		}

		ids, err := run.species(ctx, b.Species)
		if err != nil {
			return err
		}

		result.SpeciesIDs = ids
		registered = run.registry.Len()

		return nil
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("Batch committed",
		slog.Int("species", len(result.SpeciesIDs)),
		slog.Int("connection_ids", registered),
	)

	return result, nil
}

// stageRun carries the per-request state threaded through every stage: the
// transaction scope and the connection id registry. Never shared across
// requests.
type stageRun struct {
	scope    Scope
	registry *Registry
	aliaser  Aliaser
	logger   *slog.Logger
}

// fail attaches stage and connection id context to an error.
func (r *stageRun) fail(stage Stage, connectionID string, err error) error {
	return &Error{Stage: stage, ConnectionID: connectionID, Err: err}
}

// authors resolves the standalone author entries.
func (r *stageRun) authors(ctx context.Context, items []AuthorItem) error {
	for i := range items {
		item := &items[i]
		item.Author.Normalize()

		id, created, err := r.resolveAuthor(ctx, &item.Author)
		if err != nil {
			return r.fail(StageAuthors, item.ConnectionID, err)
		}

		if err := r.registry.Register(StageAuthors, item.ConnectionID, id); err != nil {
			return r.fail(StageAuthors, item.ConnectionID, err)
		}

		r.logger.Debug("Author resolved",
			slog.String("connection_id", item.ConnectionID),
			slog.Int64("id", int64(id)),
			slog.Bool("created", created),
		)
	}

	return nil
}

// resolveAuthor find-or-creates one author. Shared by the authors stage and
// the literature stage's inline author resolution; inline authors are not
// registered under a connection id.
func (r *stageRun) resolveAuthor(ctx context.Context, author *Author) (PersistentID, bool, error) {
	key := author.MatchKey()

	return resolveOrCreate(ctx,
		func(ctx context.Context) (PersistentID, bool, error) {
			return r.scope.FindAuthor(ctx, key)
		},
		func(ctx context.Context) (PersistentID, error) {
			return r.scope.CreateAuthor(ctx, *author)
		},
	)
}

// literature resolves the literature entries. Entries with a doi or isbn
// deduplicate against stored records; entries with neither always create.
func (r *stageRun) literature(ctx context.Context, items []LiteratureItem) error {
	for i := range items {
		item := &items[i]
		item.Literature.Normalize()

		var (
			id      PersistentID
			created bool
			err     error
		)

		if key, ok := item.Literature.MatchKey(); ok {
			id, created, err = resolveOrCreate(ctx,
				func(ctx context.Context) (PersistentID, bool, error) {
					return r.scope.FindLiterature(ctx, key)
				},
				func(ctx context.Context) (PersistentID, error) {
					return r.createLiterature(ctx, &item.Literature)
				},
			)
		} else {
			created = true

			id, err = r.createLiterature(ctx, &item.Literature)
			if err != nil {
				err = failBatch(err)
			}
		}

		if err != nil {
			return r.fail(StageLiterature, item.ConnectionID, err)
		}

		if err := r.registry.Register(StageLiterature, item.ConnectionID, id); err != nil {
			return r.fail(StageLiterature, item.ConnectionID, err)
		}

		r.logger.Debug("Literature resolved",
			slog.String("connection_id", item.ConnectionID),
			slog.Int64("id", int64(id)),
			slog.Bool("created", created),
		)
	}

	return nil
}

// createLiterature inserts a literature entry, then resolves its inline
// authors and links them. Runs only when no stored equivalent was matched; a
// matched entry keeps the author associations it already has.
func (r *stageRun) createLiterature(ctx context.Context, literature *Literature) (PersistentID, error) {
	literatureID, err := r.scope.CreateLiterature(ctx, *literature)
	if err != nil {
		return 0, err
	}

	for i := range literature.Authors {
		authorID, _, err := r.resolveAuthor(ctx, &literature.Authors[i])
		if err != nil {
			return 0, err
		}

		if err := r.scope.LinkLiteratureAuthor(ctx, literatureID, authorID); err != nil {
			return 0, err
		}
	}

	return literatureID, nil
}

// levels resolves the levels of theory. Fields are folded and alias-mapped
// before matching, so spelling variants of one level deduplicate within and
// across batches.
func (r *stageRun) levels(ctx context.Context, items []LevelItem) error {
	for i := range items {
		item := &items[i]
		item.Level.Normalize()
		item.Level.ApplyAliases(r.aliaser)

		key := item.Level.MatchKey()

		id, created, err := resolveOrCreate(ctx,
			func(ctx context.Context) (PersistentID, bool, error) {
				return r.scope.FindLevel(ctx, key)
			},
			func(ctx context.Context) (PersistentID, error) {
				return r.scope.CreateLevel(ctx, item.Level)
			},
		)
		if err != nil {
			return r.fail(StageLevels, item.ConnectionID, err)
		}

		if err := r.registry.Register(StageLevels, item.ConnectionID, id); err != nil {
			return r.fail(StageLevels, item.ConnectionID, err)
		}

		r.logger.Debug("Level resolved",
			slog.String("connection_id", item.ConnectionID),
			slog.Int64("id", int64(id)),
			slog.Bool("created", created),
			slog.String("fingerprint", key.Fingerprint()),
		)
	}

	return nil
}

// bots resolves the bot entries. The (name, version) uniqueness constraint
// makes this the one stage whose dedup is race safe under concurrent
// submissions.
func (r *stageRun) bots(ctx context.Context, items []BotItem) error {
	for i := range items {
		item := &items[i]
		item.Bot.Normalize()

		key := item.Bot.MatchKey()

		id, created, err := resolveOrCreate(ctx,
			func(ctx context.Context) (PersistentID, bool, error) {
				return r.scope.FindBot(ctx, key)
			},
			func(ctx context.Context) (PersistentID, error) {
				return r.scope.CreateBot(ctx, item.Bot)
			},
		)
		if err != nil {
			return r.fail(StageBots, item.ConnectionID, err)
		}

		if err := r.registry.Register(StageBots, item.ConnectionID, id); err != nil {
			return r.fail(StageBots, item.ConnectionID, err)
		}

		r.logger.Debug("Bot resolved",
			slog.String("connection_id", item.ConnectionID),
			slog.Int64("id", int64(id)),
			slog.Bool("created", created),
			slog.String("fingerprint", key.Fingerprint()),
		)
	}

	return nil
}

// ess resolves the electronic structure software descriptors.
func (r *stageRun) ess(ctx context.Context, items []ESSItem) error {
	for i := range items {
		item := &items[i]
		item.ESS.Normalize()

		key := item.ESS.MatchKey()

		id, created, err := resolveOrCreate(ctx,
			func(ctx context.Context) (PersistentID, bool, error) {
				return r.scope.FindESS(ctx, key)
			},
			func(ctx context.Context) (PersistentID, error) {
				return r.scope.CreateESS(ctx, item.ESS)
			},
		)
		if err != nil {
			return r.fail(StageESS, item.ConnectionID, err)
		}

		if err := r.registry.Register(StageESS, item.ConnectionID, id); err != nil {
			return r.fail(StageESS, item.ConnectionID, err)
		}

		r.logger.Debug("ESS resolved",
			slog.String("connection_id", item.ConnectionID),
			slog.Int64("id", int64(id)),
			slog.Bool("created", created),
		)
	}

	return nil
}

// enCorrs creates the energy correction sets. No dedup; the primary level
// reference is required.
func (r *stageRun) enCorrs(ctx context.Context, items []EnCorrItem) error {
	for i := range items {
		item := &items[i]
		item.EnCorr.Normalize()

		if emptyPtr(item.PrimaryLevelConnectionID) {
			return r.fail(StageEnCorrs, item.ConnectionID,
				fmt.Errorf("%w: primary level reference", ErrUnresolvedReference))
		}

		levelID, err := r.registry.Resolve(StageLevels, *item.PrimaryLevelConnectionID)
		if err != nil {
			return r.fail(StageEnCorrs, item.ConnectionID, err)
		}

		isodesmicID, err := r.registry.ResolveOptional(StageLevels, item.IsodesmicLevelConnectionID)
		if err != nil {
			return r.fail(StageEnCorrs, item.ConnectionID, err)
		}

		record := EnCorrRecord{
			EnCorr:               item.EnCorr,
			LevelID:              levelID,
			IsodesmicHighLevelID: isodesmicID,
		}

		id, err := r.scope.CreateEnCorr(ctx, record)
		if err != nil {
			if !errors.Is(err, ErrConflict) {
				err = failBatch(err)
			}

			return r.fail(StageEnCorrs, item.ConnectionID, err)
		}

		if err := r.registry.Register(StageEnCorrs, item.ConnectionID, id); err != nil {
			return r.fail(StageEnCorrs, item.ConnectionID, err)
		}
	}

	return nil
}

// freqScales creates the frequency scaling factors. No dedup; the level
// reference is required.
func (r *stageRun) freqScales(ctx context.Context, items []FreqScaleItem) error {
	for i := range items {
		item := &items[i]
		item.FreqScale.Normalize()

		if emptyPtr(item.LevelConnectionID) {
			return r.fail(StageFreqScales, item.ConnectionID,
				fmt.Errorf("%w: level reference", ErrUnresolvedReference))
		}

		levelID, err := r.registry.Resolve(StageLevels, *item.LevelConnectionID)
		if err != nil {
			return r.fail(StageFreqScales, item.ConnectionID, err)
		}

		record := FreqScaleRecord{FreqScale: item.FreqScale, LevelID: levelID}

		id, err := r.scope.CreateFreqScale(ctx, record)
		if err != nil {
			if !errors.Is(err, ErrConflict) {
				err = failBatch(err)
			}

			return r.fail(StageFreqScales, item.ConnectionID, err)
		}

		if err := r.registry.Register(StageFreqScales, item.ConnectionID, id); err != nil {
			return r.fail(StageFreqScales, item.ConnectionID, err)
		}
	}

	return nil
}

// species creates the species records, resolving every reference slot. No
// dedup: a label clash surfaces as a conflict and fails the batch. Returns
// the created ids in submission order.
func (r *stageRun) species(ctx context.Context, items []SpeciesItem) ([]PersistentID, error) {
	ids := make([]PersistentID, 0, len(items))

	for i := range items {
		item := &items[i]
		item.Species.Normalize()

		record, err := r.resolveSpeciesRefs(item)
		if err != nil {
			return nil, err
		}

		id, err := r.scope.CreateSpecies(ctx, *record)
		if err != nil {
			if !errors.Is(err, ErrConflict) {
				err = failBatch(err)
			}

			return nil, r.fail(StageSpecies, item.ConnectionID, err)
		}

		if err := r.registry.Register(StageSpecies, item.ConnectionID, id); err != nil {
			return nil, r.fail(StageSpecies, item.ConnectionID, err)
		}

		r.logger.Debug("Species created",
			slog.String("connection_id", item.ConnectionID),
			slog.String("label", item.Species.Label),
			slog.Int64("id", int64(id)),
		)

		ids = append(ids, id)
	}

	return ids, nil
}

// resolveSpeciesRefs rewrites every reference of one species item from
// connection ids to persistent ids. The single-point level is mandatory;
// every other slot passes through as nil when absent. Any present but
// unresolvable reference fails the batch.
func (r *stageRun) resolveSpeciesRefs(item *SpeciesItem) (*SpeciesRecord, error) {
	record := &SpeciesRecord{Species: item.Species}

	levels := item.LevelConnections
	if strings.TrimSpace(levels.SP) == "" {
		return nil, r.fail(StageSpecies, item.ConnectionID,
			fmt.Errorf("%w: sp level reference", ErrUnresolvedReference))
	}

	spLevelID, err := r.registry.Resolve(StageLevels, levels.SP)
	if err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	record.SPLevelID = spLevelID

	if record.OptLevelID, err = r.registry.ResolveOptional(StageLevels, levels.Opt); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	if record.FreqLevelID, err = r.registry.ResolveOptional(StageLevels, levels.Freq); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	if record.ScanLevelID, err = r.registry.ResolveOptional(StageLevels, levels.Scan); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	if record.IRCLevelID, err = r.registry.ResolveOptional(StageLevels, levels.IRC); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	ess := item.ESSConnections

	if record.OptESSID, err = r.registry.ResolveOptional(StageESS, ess.Opt); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	if record.FreqESSID, err = r.registry.ResolveOptional(StageESS, ess.Freq); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	if record.ScanESSID, err = r.registry.ResolveOptional(StageESS, ess.Scan); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	if record.IRCESSID, err = r.registry.ResolveOptional(StageESS, ess.IRC); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	if record.SPESSID, err = r.registry.ResolveOptional(StageESS, ess.SP); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	if record.LiteratureID, err = r.registry.ResolveOptional(StageLiterature, item.LiteratureConnectionID); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	if record.BotID, err = r.registry.ResolveOptional(StageBots, item.BotConnectionID); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	if record.EnCorrID, err = r.registry.ResolveOptional(StageEnCorrs, item.EnCorrConnectionID); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	if record.FreqScaleID, err = r.registry.ResolveOptional(StageFreqScales, item.FreqScaleConnectionID); err != nil {
		return nil, r.fail(StageSpecies, item.ConnectionID, err)
	}

	return record, nil
}
