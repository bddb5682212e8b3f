package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

// Формат файла для STORAGE_DRIVER=memory
type seedFile struct {
	Listings  []seedListing  `json:"listings"`
	Mutations []seedMutation `json:"mutations"`
}

type seedListing struct {
	ID             int64      `json:"id"`
	Source         string     `json:"source"`
	Commune        string     `json:"commune"`
	PostalCode     string     `json:"codePostal"`
	DepartmentCode string     `json:"codeDepartement"`
	Department     string     `json:"departement"`
	Address        string     `json:"adresse"`
	PropertyType   string     `json:"typeLocal"`
	Price          *float64   `json:"prix"`
	Details        string     `json:"details"`
	Description    string     `json:"description"`
	Images         []string   `json:"images"`
	CreatedAt      *time.Time `json:"createdAt"`
}

type seedMutation struct {
	StreetNumber *int     `json:"novoie"`
	Suffix       string   `json:"btq"`
	StreetType   string   `json:"typvoie"`
	StreetName   string   `json:"voie"`
	Commune      string   `json:"commune"`
	PostalCode   string   `json:"codepostal"`
	MutationID   int64    `json:"idmutation"`
	MutationDate *string  `json:"datemut"`
	Value        *float64 `json:"valeurfonc"`
}

// LoadSeed читает JSON-файл и создает заполненные хранилища.
// Индекс улиц сразу обновляется, чтобы данные были видны поиску.
func LoadSeed(path string) (*ListingStore, *StreetIndex, error) {
	store := NewListingStore()
	index := NewStreetIndex()
	if path == "" {
		return store, index, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, nil, fmt.Errorf("failed to decode seed file %s: %w", path, err)
	}

	listings := make([]domain.Listing, 0, len(seed.Listings))
	for _, l := range seed.Listings {
		listings = append(listings, domain.Listing{
			ID:             l.ID,
			Source:         l.Source,
			Commune:        l.Commune,
			PostalCode:     l.PostalCode,
			DepartmentCode: l.DepartmentCode,
			Department:     l.Department,
			Address:        l.Address,
			PropertyType:   l.PropertyType,
			Price:          l.Price,
			Details:        l.Details,
			Description:    l.Description,
			Images:         l.Images,
			CreatedAt:      l.CreatedAt,
		})
	}
	store.Add(listings...)

	records := make([]domain.StreetSearchRecord, 0, len(seed.Mutations))
	for i, m := range seed.Mutations {
		rec := domain.StreetSearchRecord{
			StreetNumber: m.StreetNumber,
			Suffix:       m.Suffix,
			StreetType:   m.StreetType,
			StreetName:   m.StreetName,
			Commune:      m.Commune,
			PostalCode:   m.PostalCode,
			MutationID:   m.MutationID,
			Value:        m.Value,
		}
		if m.MutationDate != nil && *m.MutationDate != "" {
			date, err := time.Parse(time.DateOnly, *m.MutationDate)
			if err != nil {
				return nil, nil, fmt.Errorf("mutation #%d: invalid datemut %q: %w", i, *m.MutationDate, err)
			}
			rec.MutationDate = &date
		}
		records = append(records, rec)
	}
	index.Stage(records...)
	if err := index.RefreshConcurrently(context.Background()); err != nil {
		return nil, nil, fmt.Errorf("failed to publish seeded street index: %w", err)
	}

	return store, index, nil
}
