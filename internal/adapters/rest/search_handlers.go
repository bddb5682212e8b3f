package rest

import (
	"net/http"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port/usecases_port"
)

const defaultSuggestionLimit = 10

type SearchHandler struct {
	suggestUC usecases_port.SuggestLocationsUseCase
	searchUC  usecases_port.SearchListingsUseCase
}

func NewSearchHandler(suggestUC usecases_port.SuggestLocationsUseCase, searchUC usecases_port.SearchListingsUseCase) *SearchHandler {
	return &SearchHandler{suggestUC: suggestUC, searchUC: searchUC}
}

// Suggestions обрабатывает GET /api/v1/suggestions?q=&limit=
func (h *SearchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	query := r.URL.Query()

	limit, err := parseIntOrDefault(query, "limit", defaultSuggestionLimit)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	candidates, err := h.suggestUC.Execute(r.Context(), query.Get("q"), limit)
	if err != nil {
		status := statusFromError(err)
		logger.Error("Suggestions failed", err, port.Fields{"status": status})
		WriteJSONError(w, status, publicMessage(status, err))
		return
	}

	RespondWithJSON(w, http.StatusOK, toSuggestionResponses(candidates))
}

// SearchWithFilters обрабатывает GET /api/v1/search-with-filters
func (h *SearchHandler) SearchWithFilters(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	query := r.URL.Query()

	page, err := parsePage(query)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	minBudget, err := parseOptionalFloat(query, "minBudget")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	maxBudget, err := parseOptionalFloat(query, "maxBudget")
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	criteria := domain.SearchCriteria{
		LocationValue: parseString(query, "value"),
		LocationType:  parseString(query, "type"),
		MinBudget:     minBudget,
		MaxBudget:     maxBudget,
		PropertyType:  parseString(query, "propertyType"),
		BedroomSpec:   query.Get("chambres"),
	}

	result, err := h.searchUC.Execute(r.Context(), criteria, page)
	if err != nil {
		status := statusFromError(err)
		logger.Error("Listing search failed", err, port.Fields{"status": status})
		WriteJSONError(w, status, publicMessage(status, err))
		return
	}

	RespondWithJSON(w, http.StatusOK, toListingPageResponse(result))
}
