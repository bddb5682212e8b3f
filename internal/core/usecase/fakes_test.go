package usecase_test

import (
	"context"
	"sync"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

// failingStore запоминает вызовы и всегда возвращает err
type failingStore struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *failingStore) called() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *failingStore) FindListings(context.Context, domain.Predicate, domain.PageRequest) (*domain.ListingPage, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return nil, s.err
}

func (s *failingStore) FindLocationCandidates(context.Context, domain.SuggestionCategory, string, int) ([]domain.SuggestionCandidate, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return nil, s.err
}

func (s *failingStore) Ping(context.Context) error { return s.err }

// capturingStore сохраняет последнее условие поиска
type capturingStore struct {
	filter domain.Predicate
	page   domain.PageRequest
}

func (s *capturingStore) FindListings(_ context.Context, filter domain.Predicate, page domain.PageRequest) (*domain.ListingPage, error) {
	s.filter = filter
	s.page = page
	return &domain.ListingPage{Listings: []domain.Listing{}, Page: page.Page, Size: page.Size}, nil
}

func (s *capturingStore) FindLocationCandidates(context.Context, domain.SuggestionCategory, string, int) ([]domain.SuggestionCandidate, error) {
	return nil, nil
}

func (s *capturingStore) Ping(context.Context) error { return nil }

type recordingReporter struct {
	reports []domain.RefreshReport
	err     error
}

func (r *recordingReporter) ReportRefresh(_ context.Context, report domain.RefreshReport) error {
	r.reports = append(r.reports, report)
	return r.err
}

type refreshCounter struct {
	calls int
	err   error
}

func (c *refreshCounter) SearchStreets(context.Context, domain.StreetSearchFilters, domain.PageRequest) (*domain.StreetSearchPage, error) {
	return &domain.StreetSearchPage{Records: []domain.StreetSearchRecord{}}, nil
}

func (c *refreshCounter) FastSearchStreets(context.Context, domain.StreetSearchFilters, int) ([]domain.StreetSearchRecord, error) {
	return []domain.StreetSearchRecord{}, nil
}

func (c *refreshCounter) RefreshConcurrently(context.Context) error {
	c.calls++
	return c.err
}

func ptr[T any](v T) *T { return &v }
