package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logger_adapter "github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/logger"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/memory"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/metrics"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unavailableStore struct{}

func (unavailableStore) FindListings(context.Context, domain.Predicate, domain.PageRequest) (*domain.ListingPage, error) {
	return nil, fmt.Errorf("%w: connection refused", domain.ErrStoreUnavailable)
}

func (unavailableStore) FindLocationCandidates(context.Context, domain.SuggestionCategory, string, int) ([]domain.SuggestionCandidate, error) {
	return nil, fmt.Errorf("%w: connection refused", domain.ErrStoreUnavailable)
}

func (unavailableStore) Ping(context.Context) error { return domain.ErrStoreUnavailable }

type testEnv struct {
	handler http.Handler
	index   *memory.StreetIndex
}

func newTestEnv(t *testing.T, store port.ListingStorePort) testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, store, ServerConfig{Port: "0"})
}

func newTestEnvWithConfig(t *testing.T, store port.ListingStorePort, cfg ServerConfig) testEnv {
	t.Helper()

	logger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{Writer: io.Discard})
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	date := time.Date(2022, 7, 14, 0, 0, 0, 0, time.UTC)
	number := 8
	price := 320000.0

	if store == nil {
		store = memory.NewListingStore(
			domain.Listing{ID: 1, Source: "dvf", Commune: "Toulouse", PostalCode: "31000", Department: "Haute-Garonne",
				DepartmentCode: "31", Address: "8 Rue Alsace", PropertyType: "Appartement", Price: &price,
				Details: "3 chambres", CreatedAt: &created},
			domain.Listing{ID: 2, Source: "dvf", Commune: "Toulouse", PostalCode: "31000", Department: "Haute-Garonne",
				DepartmentCode: "31", PropertyType: "Maison", Details: "Chambres: 5"},
		)
	}
	index := memory.NewStreetIndex(domain.StreetSearchRecord{
		StreetNumber: &number, StreetType: "RUE", StreetName: "ALSACE LORRAINE", Commune: "Toulouse",
		PostalCode: "31000", MutationID: 42, MutationDate: &date, Value: &price,
	})
	m := metrics.New()

	searchHandler := NewSearchHandler(
		usecase.NewSuggestLocationsUseCase(store),
		usecase.NewSearchListingsUseCase(store),
	)
	streetHandler := NewStreetSearchHandler(
		usecase.NewSearchStreetsUseCase(index),
		usecase.NewFastSearchStreetsUseCase(index),
		usecase.NewRefreshStreetIndexUseCase(index, m),
	)

	return testEnv{
		handler: NewRouter(cfg, searchHandler, streetHandler, NewHealthHandler(store), m, logger),
		index:   index,
	}
}

func (e testEnv) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestSearchWithFilters(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/search-with-filters?value=31&type=department&chambres=3&size=5")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	page := decode[PageResponse[ListingResponse]](t, rec)
	assert.Equal(t, 1, page.TotalElements)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 5, page.Size)
	require.Len(t, page.Content, 1)
	assert.Equal(t, int64(1), page.Content[0].ID)
	assert.NotNil(t, page.Content[0].Images)
}

func TestSearchWithFilters_MissingLocation(t *testing.T) {
	env := newTestEnv(t, unavailableStore{})

	rec := env.do(t, http.MethodGet, "/api/v1/search-with-filters?type=commune")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"content":[],"totalElements":0,"totalPages":0,"page":0,"size":20}`, rec.Body.String())
}

func TestSearchWithFilters_BadRequests(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, target := range []string{
		"/api/v1/search-with-filters?value=x&type=city",
		"/api/v1/search-with-filters?value=x&type=commune&minBudget=cheap",
		"/api/v1/search-with-filters?value=x&type=commune&page=first",
		"/api/v1/suggestions?q=tou&limit=ten",
		"/api/v1/mutation-search?novoie=8bis",
		"/api/v1/mutation-search/fast?limit=many",
	} {
		rec := env.do(t, http.MethodGet, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"error"`, target)
	}
}

func TestStoreUnavailable(t *testing.T) {
	env := newTestEnv(t, unavailableStore{})

	for _, target := range []string{
		"/api/v1/search-with-filters?value=Paris&type=commune",
		"/api/v1/suggestions?q=par",
	} {
		rec := env.do(t, http.MethodGet, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
		assert.NotContains(t, rec.Body.String(), "connection refused", target)
	}

	rec := env.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
}

func TestSuggestions(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/suggestions?q=toul")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[[]SuggestionResponse](t, rec)
	assert.Equal(t, []SuggestionResponse{
		{Value: "Toulouse", DisplayLabel: "Toulouse (31000)", Category: "commune", OccurrenceCount: 2},
	}, got)

	empty := env.do(t, http.MethodGet, "/api/v1/suggestions?q=")
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `[]`, empty.Body.String())
}

func TestMutationSearchAndRefresh(t *testing.T) {
	env := newTestEnv(t, nil)

	before := env.do(t, http.MethodGet, "/api/v1/mutation-search?voie=alsace")
	require.Equal(t, http.StatusOK, before.Code)
	assert.Equal(t, 0, decode[PageResponse[StreetRecordResponse]](t, before).TotalElements)

	refresh := env.do(t, http.MethodPost, "/api/v1/mutation-search/refresh")
	require.Equal(t, http.StatusOK, refresh.Code)
	assert.JSONEq(t, `{"status":"refreshed"}`, refresh.Body.String())

	after := env.do(t, http.MethodGet, "/api/v1/mutation-search?voie=alsace&novoie=8")
	require.Equal(t, http.StatusOK, after.Code)
	page := decode[PageResponse[StreetRecordResponse]](t, after)
	require.Len(t, page.Content, 1)
	require.NotNil(t, page.Content[0].MutationDate)
	assert.Equal(t, "2022-07-14", *page.Content[0].MutationDate)

	fast := env.do(t, http.MethodGet, "/api/v1/mutation-search/fast?commune=toulouse&limit=5")
	require.Equal(t, http.StatusOK, fast.Code)
	records := decode[[]StreetRecordResponse](t, fast)
	require.Len(t, records, 1)
	assert.Equal(t, int64(42), records[0].MutationID)
}

func TestRefreshFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.FailNextRefresh(errors.New("deadlock detected"))

	rec := env.do(t, http.MethodPost, "/api/v1/mutation-search/refresh")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"street index refresh failed"}`, rec.Body.String())
}

func TestTraceHeader(t *testing.T) {
	env := newTestEnv(t, nil)

	generated := env.do(t, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, generated.Code)
	assert.Len(t, generated.Header().Get(traceHeader), 36)

	const traceID = "0b7f4a1e-6a41-4c4e-9a8c-2f3a5d8e9b10"
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(traceHeader, traceID)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, traceID, rec.Header().Get(traceHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(traceHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(traceHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/api/v1/suggestions?q=toul")
	env.do(t, http.MethodPost, "/api/v1/mutation-search/refresh")

	rec := env.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `dvf_search_http_requests_total{method="GET",path="/api/v1/suggestions",status="200"} 1`)
	assert.Contains(t, body, `dvf_search_street_index_refresh_total{status="success",trigger="http"} 1`)
}

func TestStatusFromError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFromError(fmt.Errorf("wrap: %w", domain.ErrInvalidRequest)))
	assert.Equal(t, http.StatusServiceUnavailable, statusFromError(domain.ErrStoreUnavailable))
	assert.Equal(t, http.StatusServiceUnavailable, statusFromError(fmt.Errorf("%w: %w", domain.ErrRefreshFailed, errors.New("x"))))
	assert.Equal(t, http.StatusInternalServerError, statusFromError(errors.New("unexpected")))
}
