package usecases_port

import (
	"context"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

type SearchStreetsUseCase interface {
	Execute(ctx context.Context, filters domain.StreetSearchFilters, page domain.PageRequest) (*domain.StreetSearchPage, error)
}

type FastSearchStreetsUseCase interface {
	Execute(ctx context.Context, filters domain.StreetSearchFilters, limit int) ([]domain.StreetSearchRecord, error)
}
