// Package api provides HTTP API server implementation for the KinDB service.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kindb-io/kindb/internal/api/middleware"
	"github.com/kindb-io/kindb/internal/batch"
)

// handleBatchUpload handles batch record uploads.
// POST /api/v1/batch - Resolve and persist one batch of interrelated records
//
// Request validation (returns 4xx):
//   - 403 Forbidden: Client lacks the batch:write permission
//   - 405 Method Not Allowed: Only POST is allowed (handled by route pattern)
//   - 415 Unsupported Media Type: Content-Type must be application/json
//   - 413 Payload Too Large: Request body exceeds MaxRequestSize
//   - 400 Bad Request: Empty body, invalid JSON, empty batch, a failed field
//     validation, or an unresolvable connection id reference (the problem
//     carries the failing stage and connection id)
//   - 409 Conflict: A record clashes with an already stored record
//
// Success responses:
//   - 200 OK: Whole batch committed; the response lists created species ids
//     in submission order
//
// The batch is all-or-nothing: any failure discards every record of the
// request, so a corrected resubmission never collides with partial state.
func (s *Server) handleBatchUpload(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	correlationID := middleware.GetCorrelationID(r.Context())

	if !s.authorize(w, r, PermissionBatchWrite) {
		return
	}

	// Content-Type validation
	if !hasJSONContentType(r.Header.Get("Content-Type")) {
		WriteErrorResponse(w, r, s.logger, UnsupportedMediaType("Content-Type must be application/json"))

		return
	}

	// Parse request and map to the domain model
	b, problem := s.parseBatchRequest(r)
	if problem != nil {
		WriteErrorResponse(w, r, s.logger, problem)

		return
	}

	// Validate item fields before touching storage
	if err := s.validator.ValidateBatch(b); err != nil {
		s.logger.Warn("Batch validation failed",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, ProblemFromBatchError(err))

		return
	}

	// Resolve references and persist the whole batch atomically
	result, err := s.pipeline.Run(r.Context(), b)
	if err != nil {
		if errors.Is(err, batch.ErrBatchFailed) {
			s.logger.Error("Batch upload failed",
				slog.String("correlation_id", correlationID),
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.Warn("Batch upload rejected",
				slog.String("correlation_id", correlationID),
				slog.String("error", err.Error()),
			)
		}

		WriteErrorResponse(w, r, s.logger, ProblemFromBatchError(err))

		return
	}

	response := buildBatchResponse(result)

	data, err := json.Marshal(response)
	if err != nil {
		s.logger.Error("Failed to marshal batch response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to encode response"))

		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write batch response",
			slog.String("correlation_id", correlationID),
			slog.String("error", err.Error()),
		)

		return
	}

	// Log success with duration
	duration := time.Since(startTime)
	s.logger.Info("Batch upload processed",
		slog.String("correlation_id", correlationID),
		slog.Int("species", len(result.SpeciesIDs)),
		slog.Duration("duration", duration),
	)
}

// parseBatchRequest parses and validates the HTTP request body.
// Decodes the API request type and maps it to the domain model.
// Returns the mapped batch or a ProblemDetail if parsing fails.
//
// Validates:
//   - Request size (optimization for known oversized requests)
//   - Empty body check (better UX than JSON decode error)
//   - JSON parsing
//   - Empty batch check
func (s *Server) parseBatchRequest(r *http.Request) (*batch.Batch, *ProblemDetail) {
	// Request size check (optimization: fail fast for known oversized requests)
	// Allow unknown sizes (-1) or 0 (empty, caught later)
	if r.ContentLength > 0 && r.ContentLength > s.config.MaxRequestSize {
		return nil, PayloadTooLarge(
			fmt.Sprintf("Request body exceeds maximum size of %d bytes", s.config.MaxRequestSize),
		)
	}

	// Empty body check (better UX: specific error message)
	if r.ContentLength == 0 {
		return nil, BadRequest("Request body cannot be empty")
	}

	var req BatchRequest

	decoder := json.NewDecoder(io.LimitReader(r.Body, s.config.MaxRequestSize))
	if err := decoder.Decode(&req); err != nil {
		return nil, BadRequest("Invalid JSON: " + err.Error())
	}

	b := mapBatchRequest(&req)
	if b.IsEmpty() {
		return nil, BadRequest("Batch cannot be empty")
	}

	return b, nil
}

// buildBatchResponse builds the success payload from a pipeline result,
// listing the created species ids in submission order.
func buildBatchResponse(result *batch.Result) *BatchResponse {
	species := make([]CreatedSpecies, len(result.SpeciesIDs))

	for i, id := range result.SpeciesIDs {
		species[i] = CreatedSpecies{ID: int64(id)}
	}

	return &BatchResponse{
		Detail:  "Batch upload successful.",
		Species: species,
	}
}

// mapBatchRequest maps the API request type to the domain model.
// This explicit mapping layer decouples the API contract from internal domain types.
//
// The mapping is structural only: field validation is delegated to the
// domain layer (batch.Validator.ValidateBatch) and normalization to the
// pipeline, following Clean Architecture principles: domain owns its
// invariants.
func mapBatchRequest(req *BatchRequest) *batch.Batch {
	return &batch.Batch{
		Authors:    mapAuthorRequests(req.Authors),
		Literature: mapLiteratureRequests(req.Literature),
		Levels:     mapLevelRequests(req.Levels),
		Bots:       mapBotRequests(req.Bots),
		ESS:        mapESSRequests(req.ESS),
		EnCorrs:    mapEnCorrRequests(req.EnCorrs),
		FreqScales: mapFreqScaleRequests(req.FreqScales),
		Species:    mapSpeciesRequests(req.Species),
	}
}

// mapAuthorPayload maps one API author payload to the domain model.
func mapAuthorPayload(req *AuthorPayload) batch.Author {
	return batch.Author{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ORCID:     req.ORCID,
	}
}

// mapAuthorPayloads maps the inline author list of a literature entry.
func mapAuthorPayloads(requests []AuthorPayload) []batch.Author {
	if len(requests) == 0 {
		return nil
	}

	authors := make([]batch.Author, len(requests))

	for i := range requests {
		authors[i] = mapAuthorPayload(&requests[i])
	}

	return authors
}

func mapAuthorRequests(requests []AuthorRequest) []batch.AuthorItem {
	if len(requests) == 0 {
		return nil
	}

	items := make([]batch.AuthorItem, len(requests))

	for i := range requests {
		items[i] = batch.AuthorItem{
			ConnectionID: requests[i].ConnectionID,
			Author:       mapAuthorPayload(&requests[i].AuthorPayload),
		}
	}

	return items
}

func mapLiteratureRequests(requests []LiteratureRequest) []batch.LiteratureItem {
	if len(requests) == 0 {
		return nil
	}

	items := make([]batch.LiteratureItem, len(requests))

	for i := range requests {
		req := &requests[i]
		items[i] = batch.LiteratureItem{
			ConnectionID: req.ConnectionID,
			Literature: batch.Literature{
				Type:             batch.LiteratureType(req.Type),
				Title:            req.Title,
				Year:             req.Year,
				Authors:          mapAuthorPayloads(req.Authors),
				Journal:          req.Journal,
				Publisher:        req.Publisher,
				Volume:           req.Volume,
				Issue:            req.Issue,
				PageStart:        req.PageStart,
				PageEnd:          req.PageEnd,
				Editors:          req.Editors,
				Edition:          req.Edition,
				ChapterTitle:     req.ChapterTitle,
				PublicationPlace: req.PublicationPlace,
				Advisor:          req.Advisor,
				DOI:              req.DOI,
				ISBN:             req.ISBN,
				URL:              req.URL,
			},
		}
	}

	return items
}

func mapLevelRequests(requests []LevelRequest) []batch.LevelItem {
	if len(requests) == 0 {
		return nil
	}

	items := make([]batch.LevelItem, len(requests))

	for i := range requests {
		req := &requests[i]
		items[i] = batch.LevelItem{
			ConnectionID: req.ConnectionID,
			Level: batch.Level{
				Method:               req.Method,
				Basis:                req.Basis,
				AuxiliaryBasis:       req.AuxiliaryBasis,
				Dispersion:           req.Dispersion,
				Grid:                 req.Grid,
				Solvent:              req.Solvent,
				SolvationMethod:      req.SolvationMethod,
				SolvationDescription: req.SolvationDescription,
				LevelArguments:       req.LevelArguments,
			},
		}
	}

	return items
}

func mapBotRequests(requests []BotRequest) []batch.BotItem {
	if len(requests) == 0 {
		return nil
	}

	items := make([]batch.BotItem, len(requests))

	for i := range requests {
		req := &requests[i]
		items[i] = batch.BotItem{
			ConnectionID: req.ConnectionID,
			Bot: batch.Bot{
				Name:      req.Name,
				Version:   req.Version,
				URL:       req.URL,
				GitHash:   req.GitHash,
				GitBranch: req.GitBranch,
			},
		}
	}

	return items
}

func mapESSRequests(requests []ESSRequest) []batch.ESSItem {
	if len(requests) == 0 {
		return nil
	}

	items := make([]batch.ESSItem, len(requests))

	for i := range requests {
		req := &requests[i]
		items[i] = batch.ESSItem{
			ConnectionID: req.ConnectionID,
			ESS: batch.ESS{
				Name:     req.Name,
				Version:  req.Version,
				Revision: req.Revision,
				URL:      req.URL,
			},
		}
	}

	return items
}

func mapEnCorrRequests(requests []EnCorrRequest) []batch.EnCorrItem {
	if len(requests) == 0 {
		return nil
	}

	items := make([]batch.EnCorrItem, len(requests))

	for i := range requests {
		req := &requests[i]
		items[i] = batch.EnCorrItem{
			ConnectionID: req.ConnectionID,
			EnCorr: batch.EnCorr{
				SupportedElements:  req.SupportedElements,
				EnergyUnit:         req.EnergyUnit,
				AEC:                req.AEC,
				BAC:                req.BAC,
				IsodesmicReactions: mapIsodesmicReactions(req.IsodesmicReactions),
			},
			PrimaryLevelConnectionID:   req.PrimaryLevelConnectionID,
			IsodesmicLevelConnectionID: req.IsodesmicLevelConnectionID,
		}
	}

	return items
}

func mapIsodesmicReactions(requests []IsodesmicReactionRequest) []batch.IsodesmicReaction {
	if len(requests) == 0 {
		return nil
	}

	reactions := make([]batch.IsodesmicReaction, len(requests))

	for i := range requests {
		req := &requests[i]
		reactions[i] = batch.IsodesmicReaction{
			Reactants:     req.Reactants,
			Products:      req.Products,
			Stoichiometry: req.Stoichiometry,
			DHrxn298:      req.DHrxn298,
		}
	}

	return reactions
}

func mapFreqScaleRequests(requests []FreqScaleRequest) []batch.FreqScaleItem {
	if len(requests) == 0 {
		return nil
	}

	items := make([]batch.FreqScaleItem, len(requests))

	for i := range requests {
		req := &requests[i]
		items[i] = batch.FreqScaleItem{
			ConnectionID: req.ConnectionID,
			FreqScale: batch.FreqScale{
				Factor: req.Factor,
				Source: req.Source,
			},
			LevelConnectionID: req.LevelConnectionID,
		}
	}

	return items
}

func mapSpeciesRequests(requests []SpeciesRequest) []batch.SpeciesItem {
	if len(requests) == 0 {
		return nil
	}

	items := make([]batch.SpeciesItem, len(requests))

	for i := range requests {
		req := &requests[i]
		items[i] = batch.SpeciesItem{
			ConnectionID: req.ConnectionID,
			Species: batch.Species{
				Label:                      req.Label,
				SMILES:                     req.SMILES,
				InChI:                      req.InChI,
				Charge:                     req.Charge,
				Multiplicity:               req.Multiplicity,
				Coordinates:                mapCoordinates(&req.Coordinates),
				ExternalSymmetry:           req.ExternalSymmetry,
				PointGroup:                 req.PointGroup,
				ConformationMethod:         req.ConformationMethod,
				IsWell:                     req.IsWell,
				ElectronicEnergy:           req.ElectronicEnergy,
				E0:                         req.E0,
				Frequencies:                req.Frequencies,
				ScaledProjectedFrequencies: req.ScaledProjectedFrequencies,
				NormalDisplacementModes:    req.NormalDisplacementModes,
				Hessian:                    req.Hessian,
			},
			LevelConnections: batch.LevelConnections{
				Opt:  req.LevelConnections.Opt,
				Freq: req.LevelConnections.Freq,
				Scan: req.LevelConnections.Scan,
				IRC:  req.LevelConnections.IRC,
				SP:   req.LevelConnections.SP,
			},
			ESSConnections: batch.ESSConnections{
				Opt:  req.ESSConnections.Opt,
				Freq: req.ESSConnections.Freq,
				Scan: req.ESSConnections.Scan,
				IRC:  req.ESSConnections.IRC,
				SP:   req.ESSConnections.SP,
			},
			LiteratureConnectionID: req.LiteratureConnectionID,
			BotConnectionID:        req.BotConnectionID,
			EnCorrConnectionID:     req.EnCorrConnectionID,
			FreqScaleConnectionID:  req.FreqScaleConnectionID,
		}
	}

	return items
}

// mapCoordinates maps an API coordinates payload to the domain model.
func mapCoordinates(req *CoordinatesPayload) batch.Coordinates {
	return batch.Coordinates{
		Symbols:  req.Symbols,
		Isotopes: req.Isotopes,
		Coords:   req.Coords,
	}
}
