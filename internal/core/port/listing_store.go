package port

import (
	"context"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

// ListingStorePort - хранилище объявлений (мутаций DVF+).
// Получает декларативное условие, порядок фиксирован на стороне адаптера (domain.ListingLess).
type ListingStorePort interface {
	FindListings(ctx context.Context, filter domain.Predicate, page domain.PageRequest) (*domain.ListingPage, error)

	// FindLocationCandidates группирует записи по полю категории и считает вхождения.
	FindLocationCandidates(ctx context.Context, category domain.SuggestionCategory, query string, limit int) ([]domain.SuggestionCandidate, error)

	Ping(ctx context.Context) error
}
