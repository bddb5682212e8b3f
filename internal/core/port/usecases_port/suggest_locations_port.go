package usecases_port

import (
	"context"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

type SuggestLocationsUseCase interface {
	Execute(ctx context.Context, query string, limit int) ([]domain.SuggestionCandidate, error)
}
