package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kindb-io/kindb/internal/aliasing"
	"github.com/kindb-io/kindb/internal/batch"
)

// Read side of BatchStore: species retrieval for the API and level field
// usage counts for the alias suggester. Query methods run outside batch
// transactions and always exclude soft-deleted rows.

// ErrSpeciesNotFound is returned when no live species has the requested id.
var ErrSpeciesNotFound = errors.New("species not found")

// StoredSpecies is a committed species row with its assigned id, resolved
// references, and bookkeeping timestamps.
type StoredSpecies struct {
	ID batch.PersistentID
	batch.SpeciesRecord
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetSpeciesByID retrieves one species by persistent id.
// Soft-deleted species are treated as absent and return ErrSpeciesNotFound.
func (s *BatchStore) GetSpeciesByID(ctx context.Context, id batch.PersistentID) (*StoredSpecies, error) {
	query := `
		SELECT
			id, label, smiles, inchi, charge, multiplicity,
			coordinates, external_symmetry, point_group, conformation_method, is_well,
			electronic_energy, e0,
			frequencies, scaled_projected_frequencies, normal_displacement_modes, hessian,
			opt_level_id, freq_level_id, scan_level_id, irc_level_id, sp_level_id,
			opt_ess_id, freq_ess_id, scan_ess_id, irc_ess_id, sp_ess_id,
			literature_id, bot_id, encorr_id, freq_scale_id,
			created_at, updated_at
		FROM species
		WHERE id = $1 AND deleted_at IS NULL
	`

	var (
		sp          StoredSpecies
		coordinates []byte
		frequencies []byte
		scaled      []byte
		modes       []byte
		hessian     []byte
	)

	err := s.conn.QueryRowContext(ctx, query, id).Scan(
		&sp.ID, &sp.Label, &sp.SMILES, &sp.InChI, &sp.Charge, &sp.Multiplicity,
		&coordinates, &sp.ExternalSymmetry, &sp.PointGroup, &sp.ConformationMethod, &sp.IsWell,
		&sp.ElectronicEnergy, &sp.E0,
		&frequencies, &scaled, &modes, &hessian,
		&sp.OptLevelID, &sp.FreqLevelID, &sp.ScanLevelID, &sp.IRCLevelID, &sp.SPLevelID,
		&sp.OptESSID, &sp.FreqESSID, &sp.ScanESSID, &sp.IRCESSID, &sp.SPESSID,
		&sp.LiteratureID, &sp.BotID, &sp.EnCorrID, &sp.FreqScaleID,
		&sp.CreatedAt, &sp.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrSpeciesNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: failed to query species: %w", ErrBatchStoreFailed, err)
	}

	if err := json.Unmarshal(coordinates, &sp.Coordinates); err != nil {
		return nil, fmt.Errorf("%w: failed to decode coordinates: %w", ErrBatchStoreFailed, err)
	}

	for _, field := range []struct {
		raw  []byte
		dest any
	}{
		{frequencies, &sp.Frequencies},
		{scaled, &sp.ScaledProjectedFrequencies},
		{modes, &sp.NormalDisplacementModes},
		{hessian, &sp.Hessian},
	} {
		if field.raw == nil {
			continue
		}

		if err := json.Unmarshal(field.raw, field.dest); err != nil {
			return nil, fmt.Errorf("%w: failed to decode species arrays: %w", ErrBatchStoreFailed, err)
		}
	}

	return &sp, nil
}

// LevelFieldUsage returns the distinct method and basis spellings of live
// levels with their usage counts, the input the alias suggester groups by
// skeleton. Stored spellings are already folded, so no further
// normalization happens here.
func (s *BatchStore) LevelFieldUsage(ctx context.Context) (methods, bases []aliasing.FieldUsage, err error) {
	methodQuery := `
		SELECT method, COUNT(*)
		FROM levels
		WHERE deleted_at IS NULL
		GROUP BY method
		ORDER BY COUNT(*) DESC, method
	`

	basisQuery := `
		SELECT basis, COUNT(*)
		FROM levels
		WHERE basis IS NOT NULL AND deleted_at IS NULL
		GROUP BY basis
		ORDER BY COUNT(*) DESC, basis
	`

	methods, err = s.fieldUsage(ctx, methodQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to query method usage: %w", ErrBatchStoreFailed, err)
	}

	bases, err = s.fieldUsage(ctx, basisQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to query basis usage: %w", ErrBatchStoreFailed, err)
	}

	return methods, bases, nil
}

func (s *BatchStore) fieldUsage(ctx context.Context, query string) ([]aliasing.FieldUsage, error) {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = rows.Close()
	}()

	var usages []aliasing.FieldUsage

	for rows.Next() {
		var usage aliasing.FieldUsage

		if err := rows.Scan(&usage.Value, &usage.Count); err != nil {
			return nil, err
		}

		usages = append(usages, usage)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return usages, nil
}
