// Package api provides HTTP API server implementation for the KinDB service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/kindb-io/kindb/internal/api/middleware"
	"github.com/kindb-io/kindb/internal/batch"
	"github.com/kindb-io/kindb/internal/storage"
)

// handleGetSpecies handles GET /api/v1/species/{id}.
// Returns one committed species record with all resolved reference ids.
//
// Path Parameters:
//   - id: Persistent species id (numeric string)
//
// Response codes:
//   - 200 OK: SpeciesResponse
//   - 400 Bad Request: Missing or non-numeric id
//   - 404 Not Found: No live species with this id; soft-deleted species
//     count as absent
func (s *Server) handleGetSpecies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	if !s.authorize(w, r, PermissionRecordsRead) {
		return
	}

	idStr := r.PathValue("id")
	if idStr == "" {
		WriteErrorResponse(w, r, s.logger, BadRequest("Missing species ID"))

		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest("Invalid species ID: must be a numeric value"))

		return
	}

	species, err := s.records.GetSpeciesByID(ctx, batch.PersistentID(id))
	if err != nil {
		if errors.Is(err, storage.ErrSpeciesNotFound) {
			WriteErrorResponse(w, r, s.logger, NotFound("Species not found"))

			return
		}

		s.logger.ErrorContext(ctx, "Failed to query species",
			"correlation_id", correlationID,
			"species_id", id,
			"error", err.Error(),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to query species"))

		return
	}

	response := mapStoredSpecies(species)

	data, err := json.Marshal(response)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal species response",
			"correlation_id", correlationID,
			"species_id", id,
			"error", err.Error(),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to encode response"))

		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// mapStoredSpecies converts a stored species row to the API response.
func mapStoredSpecies(sp *storage.StoredSpecies) SpeciesResponse {
	return SpeciesResponse{
		ID:           int64(sp.ID),
		Label:        sp.Label,
		SMILES:       sp.SMILES,
		InChI:        sp.InChI,
		Charge:       sp.Charge,
		Multiplicity: sp.Multiplicity,
		Coordinates: CoordinatesPayload{
			Symbols:  sp.Coordinates.Symbols,
			Isotopes: sp.Coordinates.Isotopes,
			Coords:   sp.Coordinates.Coords,
		},
		ExternalSymmetry:           sp.ExternalSymmetry,
		PointGroup:                 sp.PointGroup,
		ConformationMethod:         sp.ConformationMethod,
		IsWell:                     sp.IsWell,
		ElectronicEnergy:           sp.ElectronicEnergy,
		E0:                         sp.E0,
		Frequencies:                sp.Frequencies,
		ScaledProjectedFrequencies: sp.ScaledProjectedFrequencies,
		NormalDisplacementModes:    sp.NormalDisplacementModes,
		Hessian:                    sp.Hessian,
		OptLevelID:                 optionalID(sp.OptLevelID),
		FreqLevelID:                optionalID(sp.FreqLevelID),
		ScanLevelID:                optionalID(sp.ScanLevelID),
		IRCLevelID:                 optionalID(sp.IRCLevelID),
		SPLevelID:                  int64(sp.SPLevelID),
		OptESSID:                   optionalID(sp.OptESSID),
		FreqESSID:                  optionalID(sp.FreqESSID),
		ScanESSID:                  optionalID(sp.ScanESSID),
		IRCESSID:                   optionalID(sp.IRCESSID),
		SPESSID:                    optionalID(sp.SPESSID),
		LiteratureID:               optionalID(sp.LiteratureID),
		BotID:                      optionalID(sp.BotID),
		EnCorrID:                   optionalID(sp.EnCorrID),
		FreqScaleID:                optionalID(sp.FreqScaleID),
		CreatedAt:                  sp.CreatedAt,
		UpdatedAt:                  sp.UpdatedAt,
	}
}

// optionalID converts an optional persistent id to its wire representation.
func optionalID(id *batch.PersistentID) *int64 {
	if id == nil {
		return nil
	}

	v := int64(*id)

	return &v
}
