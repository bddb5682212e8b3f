package usecase

import (
	"context"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
)

type SearchListingsUseCase struct {
	storage port.ListingStorePort
}

func NewSearchListingsUseCase(storage port.ListingStorePort) *SearchListingsUseCase {
	return &SearchListingsUseCase{storage: storage}
}

func (uc *SearchListingsUseCase) Execute(ctx context.Context, criteria domain.SearchCriteria, page domain.PageRequest) (*domain.ListingPage, error) {
	page = page.Normalize()

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":      "SearchListings",
		"location_type": criteria.LocationType,
		"page":          page.Page,
		"size":          page.Size,
	})

	// Без локации в хранилище не ходим вообще
	if !criteria.HasLocation() {
		ucLogger.Debug("Location value or type is missing, returning empty page", nil)
		return domain.EmptyListingPage(page), nil
	}

	bedrooms := domain.ParseBedroomSpec(criteria.BedroomSpec)

	filter, err := BuildListingPredicate(criteria, bedrooms)
	if err != nil {
		ucLogger.Warn("Invalid search criteria", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case started", port.Fields{"bedrooms": bedrooms.String()})

	result, err := uc.storage.FindListings(ctx, filter, page)
	if err != nil {
		ucLogger.Error("Storage returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_found":   result.TotalCount,
		"items_on_page": len(result.Listings),
	})

	return result, nil
}
