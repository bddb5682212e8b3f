package usecase

import (
	"context"
	"strings"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
)

const (
	DefaultSuggestionLimit = 10
	MaxSuggestionLimit     = 50
)

type SuggestLocationsUseCase struct {
	storage port.ListingStorePort
}

func NewSuggestLocationsUseCase(storage port.ListingStorePort) *SuggestLocationsUseCase {
	return &SuggestLocationsUseCase{storage: storage}
}

// Execute собирает подсказки по всем четырем категориям и ранжирует их вместе.
// Ошибка в любой категории - ошибка всего запроса, частичных ответов нет.
func (uc *SuggestLocationsUseCase) Execute(ctx context.Context, query string, limit int) ([]domain.SuggestionCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SuggestionCandidate{}, nil
	}
	limit = clampSuggestionLimit(limit)

	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "SuggestLocations",
		"query":    query,
		"limit":    limit,
	})
	ucLogger.Debug("Use case started", nil)

	var candidates []domain.SuggestionCandidate
	for _, category := range domain.SuggestionCategories {
		found, err := uc.storage.FindLocationCandidates(ctx, category, query, limit)
		if err != nil {
			ucLogger.Error("Storage returned an error", err, port.Fields{"category": category})
			return nil, err
		}
		candidates = append(candidates, found...)
	}

	ranked := domain.RankSuggestions(candidates, limit)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"candidates": len(candidates),
		"returned":   len(ranked),
	})
	return ranked, nil
}

func clampSuggestionLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxSuggestionLimit {
		return MaxSuggestionLimit
	}
	return limit
}
