package rest

import (
	"net/http"
	"net/url"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port/usecases_port"
)

type StreetSearchHandler struct {
	searchUC  usecases_port.SearchStreetsUseCase
	fastUC    usecases_port.FastSearchStreetsUseCase
	refreshUC usecases_port.RefreshStreetIndexUseCase
}

func NewStreetSearchHandler(
	searchUC usecases_port.SearchStreetsUseCase,
	fastUC usecases_port.FastSearchStreetsUseCase,
	refreshUC usecases_port.RefreshStreetIndexUseCase,
) *StreetSearchHandler {
	return &StreetSearchHandler{searchUC: searchUC, fastUC: fastUC, refreshUC: refreshUC}
}

func parseStreetFilters(query url.Values) (domain.StreetSearchFilters, error) {
	number, err := parseOptionalInt(query, "novoie")
	if err != nil {
		return domain.StreetSearchFilters{}, err
	}
	return domain.StreetSearchFilters{
		StreetNumber: number,
		Suffix:       parseString(query, "btq"),
		StreetType:   parseString(query, "typvoie"),
		StreetName:   parseString(query, "voie"),
		Commune:      parseString(query, "commune"),
		PostalCode:   parseString(query, "codepostal"),
	}, nil
}

// Search обрабатывает GET /api/v1/mutation-search
func (h *StreetSearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	query := r.URL.Query()

	filters, err := parseStreetFilters(query)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := parsePage(query)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.searchUC.Execute(r.Context(), filters, page)
	if err != nil {
		status := statusFromError(err)
		logger.Error("Street search failed", err, port.Fields{"status": status})
		WriteJSONError(w, status, publicMessage(status, err))
		return
	}

	RespondWithJSON(w, http.StatusOK, toStreetPageResponse(result))
}

// FastSearch обрабатывает GET /api/v1/mutation-search/fast
func (h *StreetSearchHandler) FastSearch(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	query := r.URL.Query()

	filters, err := parseStreetFilters(query)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseIntOrDefault(query, "limit", domain.DefaultFastSearchLimit)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.fastUC.Execute(r.Context(), filters, limit)
	if err != nil {
		status := statusFromError(err)
		logger.Error("Fast street search failed", err, port.Fields{"status": status})
		WriteJSONError(w, status, publicMessage(status, err))
		return
	}

	RespondWithJSON(w, http.StatusOK, toStreetRecordResponses(records))
}

// Refresh обрабатывает POST /api/v1/mutation-search/refresh. Синхронный: ответ после окончания обновления.
func (h *StreetSearchHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	if err := h.refreshUC.Execute(r.Context(), domain.RefreshTriggerHTTP); err != nil {
		status := statusFromError(err)
		logger.Error("Street index refresh failed", err, port.Fields{"status": status})
		WriteJSONError(w, status, "street index refresh failed")
		return
	}

	RespondWithJSON(w, http.StatusOK, RefreshResponse{Status: "refreshed"})
}
