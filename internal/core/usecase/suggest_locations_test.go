package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/memory"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestLocations_BlankQuery(t *testing.T) {
	store := &failingStore{err: errors.New("must not be called")}
	uc := usecase.NewSuggestLocationsUseCase(store)

	got, err := uc.Execute(context.Background(), "   ", 10)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Equal(t, 0, store.called())
}

func TestSuggestLocations_StoreErrorFailsWholeRequest(t *testing.T) {
	store := &failingStore{err: domain.ErrStoreUnavailable}
	uc := usecase.NewSuggestLocationsUseCase(store)

	got, err := uc.Execute(context.Background(), "par", 10)

	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Nil(t, got)
}

func TestSuggestLocations_RanksAcrossCategories(t *testing.T) {
	store := memory.NewListingStore(
		domain.Listing{ID: 1, Commune: "Paris", PostalCode: "75001", Department: "Paris", Address: "1 Rue de Paris"},
		domain.Listing{ID: 2, Commune: "PARIS", PostalCode: "75001", Department: "Paris"},
		domain.Listing{ID: 3, Commune: "Paris", PostalCode: "75002", Department: "Paris"},
		domain.Listing{ID: 4, Commune: "Cormeilles-en-Parisis", PostalCode: "95240", Department: "Val-d'Oise"},
		domain.Listing{ID: 5, Commune: "Parisot", Department: "Tarn"},
	)
	uc := usecase.NewSuggestLocationsUseCase(store)

	got, err := uc.Execute(context.Background(), "paris", 10)
	require.NoError(t, err)

	assert.Equal(t, []domain.SuggestionCandidate{
		{Value: "Paris", Label: "Paris", Category: domain.CategoryDepartment, Count: 3},
		{Value: "PARIS", Label: "PARIS (75001)", Category: domain.CategoryCommune, Count: 2},
		{Value: "Cormeilles-en-Parisis", Label: "Cormeilles-en-Parisis (95240)", Category: domain.CategoryCommune, Count: 1},
		{Value: "Paris", Label: "Paris (75002)", Category: domain.CategoryCommune, Count: 1},
		{Value: "1 Rue de Paris", Label: "1 Rue de Paris", Category: domain.CategoryAddress, Count: 1},
	}, got)
}

func TestSuggestLocations_PostalCodeLabels(t *testing.T) {
	store := memory.NewListingStore(
		domain.Listing{ID: 1, Commune: "Lille", PostalCode: "59000"},
		domain.Listing{ID: 2, PostalCode: "59000"},
	)
	uc := usecase.NewSuggestLocationsUseCase(store)

	got, err := uc.Execute(context.Background(), "5900", 10)
	require.NoError(t, err)

	assert.ElementsMatch(t, []domain.SuggestionCandidate{
		{Value: "59000", Label: "Lille (59000)", Category: domain.CategoryPostalCode, Count: 1},
		{Value: "59000", Label: "59000", Category: domain.CategoryPostalCode, Count: 1},
	}, got)
}

func TestSuggestLocations_LimitIsClamped(t *testing.T) {
	var listings []domain.Listing
	for i := 0; i < 80; i++ {
		listings = append(listings, domain.Listing{ID: int64(i), Address: "rue " + string(rune('a'+i%26)) + string(rune('a'+i/26))})
	}
	uc := usecase.NewSuggestLocationsUseCase(memory.NewListingStore(listings...))

	got, err := uc.Execute(context.Background(), "rue", 500)
	require.NoError(t, err)
	assert.Len(t, got, usecase.MaxSuggestionLimit)

	got, err = uc.Execute(context.Background(), "rue", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
