package port

import (
	"context"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

// StreetIndexPort - предрассчитанный индекс для поиска по адресу (материализованное представление).
type StreetIndexPort interface {
	SearchStreets(ctx context.Context, filters domain.StreetSearchFilters, page domain.PageRequest) (*domain.StreetSearchPage, error)
	FastSearchStreets(ctx context.Context, filters domain.StreetSearchFilters, limit int) ([]domain.StreetSearchRecord, error)

	// RefreshConcurrently перестраивает индекс, не блокируя читателей.
	RefreshConcurrently(ctx context.Context) error
}
