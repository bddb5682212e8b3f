package domain

import "time"

// Listing - одна мутация DVF+ (продажа, объявление), как ее видит поиск.
// Ядро только читает эти записи, заполняет их внешний процесс загрузки.
type Listing struct {
	ID             int64
	Source         string
	Commune        string
	PostalCode     string
	DepartmentCode string
	Department     string
	Address        string
	PropertyType   string
	Price          *float64
	Details        string
	Description    string
	Images         []string
	CreatedAt      *time.Time
}

// LocationType - по какому полю искать локацию
type LocationType string

const (
	LocationCommune    LocationType = "commune"
	LocationPostalCode LocationType = "postalCode"
	LocationDepartment LocationType = "department"
	LocationAddress    LocationType = "address"

	// старое имя из первых версий фронта
	locationPostalCodeLegacy LocationType = "postal_code"
)

// ParseLocationType нормализует тип локации, включая легаси-алиас "postal_code".
func ParseLocationType(raw string) (LocationType, bool) {
	switch LocationType(raw) {
	case LocationCommune, LocationDepartment, LocationAddress, LocationPostalCode:
		return LocationType(raw), true
	case locationPostalCodeLegacy:
		return LocationPostalCode, true
	}
	return "", false
}

// SearchCriteria - входные параметры поиска объявлений.
type SearchCriteria struct {
	LocationValue string
	LocationType  string
	MinBudget     *float64
	MaxBudget     *float64
	PropertyType  string
	BedroomSpec   string
}

// HasLocation - оба обязательных поля заполнены
func (c SearchCriteria) HasLocation() bool {
	return c.LocationValue != "" && c.LocationType != ""
}

// ListingPage - страница результатов поиска объявлений
type ListingPage struct {
	Listings   []Listing
	TotalCount int
	Page       int
	Size       int
}

// TotalPages считает количество страниц для текущего размера.
func (p ListingPage) TotalPages() int {
	return totalPages(p.TotalCount, p.Size)
}

// EmptyListingPage - пустая страница для запросов без локации.
func EmptyListingPage(page PageRequest) *ListingPage {
	page = page.Normalize()
	return &ListingPage{
		Listings: []Listing{},
		Page:     page.Page,
		Size:     page.Size,
	}
}
