package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

// WriteJSONError отправляет {"error": message} с заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "failed to marshal JSON response")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// statusFromError сопоставляет доменные ошибки HTTP-статусам
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRefreshFailed), errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// сообщение для клиента: детали драйвера наружу не отдаются
func publicMessage(status int, err error) string {
	switch status {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusServiceUnavailable:
		return "storage is temporarily unavailable"
	}
	return "internal server error"
}

func parseString(query url.Values, key string) string {
	return strings.TrimSpace(query.Get(key))
}

func parseOptionalInt(query url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parameter %q must be an integer", domain.ErrInvalidRequest, key)
	}
	return &v, nil
}

func parseOptionalFloat(query url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(query.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: parameter %q must be a number", domain.ErrInvalidRequest, key)
	}
	return &v, nil
}

func parseIntOrDefault(query url.Values, key string, def int) (int, error) {
	v, err := parseOptionalInt(query, key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return def, nil
	}
	return *v, nil
}

// parsePage читает page (с нуля) и size; отсутствующие значения берутся по умолчанию
func parsePage(query url.Values) (domain.PageRequest, error) {
	page, err := parseIntOrDefault(query, "page", 0)
	if err != nil {
		return domain.PageRequest{}, err
	}
	size, err := parseIntOrDefault(query, "size", domain.DefaultPageSize)
	if err != nil {
		return domain.PageRequest{}, err
	}
	return domain.PageRequest{Page: page, Size: size}.Normalize(), nil
}
