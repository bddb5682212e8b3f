package usecases_port

import (
	"context"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

type SearchListingsUseCase interface {
	Execute(ctx context.Context, criteria domain.SearchCriteria, page domain.PageRequest) (*domain.ListingPage, error)
}
