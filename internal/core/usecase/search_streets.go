package usecase

import (
	"context"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
)

// SearchStreetsUseCase - постраничный поиск по индексу, в его естественном порядке.
type SearchStreetsUseCase struct {
	index port.StreetIndexPort
}

func NewSearchStreetsUseCase(index port.StreetIndexPort) *SearchStreetsUseCase {
	return &SearchStreetsUseCase{index: index}
}

func (uc *SearchStreetsUseCase) Execute(ctx context.Context, filters domain.StreetSearchFilters, page domain.PageRequest) (*domain.StreetSearchPage, error) {
	page = page.Normalize()

	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "SearchStreets",
		"filters":  filters,
		"page":     page.Page,
		"size":     page.Size,
	})
	ucLogger.Debug("Use case started", nil)

	result, err := uc.index.SearchStreets(ctx, filters, page)
	if err != nil {
		ucLogger.Error("Street index returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_found":   result.TotalCount,
		"items_on_page": len(result.Records),
	})
	return result, nil
}

// FastSearchStreetsUseCase - самые свежие мутации, жесткий лимит без смещения.
type FastSearchStreetsUseCase struct {
	index port.StreetIndexPort
}

func NewFastSearchStreetsUseCase(index port.StreetIndexPort) *FastSearchStreetsUseCase {
	return &FastSearchStreetsUseCase{index: index}
}

func (uc *FastSearchStreetsUseCase) Execute(ctx context.Context, filters domain.StreetSearchFilters, limit int) ([]domain.StreetSearchRecord, error) {
	limit = domain.ClampFastSearchLimit(limit)

	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "FastSearchStreets",
		"filters":  filters,
		"limit":    limit,
	})
	ucLogger.Debug("Use case started", nil)

	records, err := uc.index.FastSearchStreets(ctx, filters, limit)
	if err != nil {
		ucLogger.Error("Street index returned an error", err, nil)
		return nil, err
	}

	// адаптер обязан соблюдать лимит, но выход за него здесь недопустим
	if len(records) > limit {
		records = records[:limit]
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"found": len(records)})
	return records, nil
}
