// Package api provides HTTP API server implementation for the KinDB service.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/kindb-io/kindb/internal/aliasing"
	"github.com/kindb-io/kindb/internal/api/middleware"
)

// handleAliasSuggestions handles GET /api/v1/levels/alias-suggestions.
// Returns suggested alias mappings derived from the spelling variants of
// stored level methods and bases, most impactful first. Suggestions the
// configured alias resolver already covers are filtered out.
//
// Response codes:
//   - 200 OK: AliasSuggestionsResponse; the suggestions list is empty when
//     every stored spelling is already canonical
func (s *Server) handleAliasSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	if !s.authorize(w, r, PermissionRecordsRead) {
		return
	}

	methods, bases, err := s.records.LevelFieldUsage(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to query level field usage",
			"correlation_id", correlationID,
			"error", err.Error(),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to query level field usage"))

		return
	}

	suggestions := aliasing.FilterResolved(s.aliases, aliasing.SuggestLevelAliases(methods, bases))

	response := mapAliasSuggestions(suggestions)

	data, err := json.Marshal(response)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to marshal alias suggestions response",
			"correlation_id", correlationID,
			"error", err.Error(),
		)
		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to encode response"))

		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// mapAliasSuggestions converts suggester output to the API response. The
// suggestions list is always non-nil so an empty result serializes as [].
func mapAliasSuggestions(suggestions []aliasing.SuggestedAlias) AliasSuggestionsResponse {
	out := make([]AliasSuggestionResponse, 0, len(suggestions))

	for _, suggestion := range suggestions {
		out = append(out, AliasSuggestionResponse{
			Field:         suggestion.Field,
			Alias:         suggestion.Alias,
			Canonical:     suggestion.Canonical,
			ResolvesCount: suggestion.ResolvesCount,
		})
	}

	return AliasSuggestionsResponse{Suggestions: out}
}
