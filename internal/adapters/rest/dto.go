package rest

import (
	"time"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

type SuggestionResponse struct {
	Value           string `json:"value"`
	DisplayLabel    string `json:"displayLabel"`
	Category        string `json:"category"`
	OccurrenceCount int    `json:"occurrenceCount"`
}

type ListingResponse struct {
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

// PageResponse - общая обертка постраничных ответов
type PageResponse[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Page          int `json:"page"`
	Size          int `json:"size"`
}

type StreetRecordResponse struct {
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

type RefreshResponse struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

func toSuggestionResponses(candidates []domain.SuggestionCandidate) []SuggestionResponse {
	out := make([]SuggestionResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, SuggestionResponse{
			Value:           c.Value,
			DisplayLabel:    c.Label,
			Category:        string(c.Category),
			OccurrenceCount: c.Count,
		})
	}
	return out
}

func toListingPageResponse(page *domain.ListingPage) PageResponse[ListingResponse] {
	content := make([]ListingResponse, 0, len(page.Listings))
	for _, l := range page.Listings {
		images := l.Images
		if images == nil {
			images = []string{}
		}
		content = append(content, ListingResponse{
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
			Images:         images,
			CreatedAt:      l.CreatedAt,
		})
	}
	return PageResponse[ListingResponse]{
		Content:       content,
		TotalElements: page.TotalCount,
		TotalPages:    page.TotalPages(),
		Page:          page.Page,
		Size:          page.Size,
	}
}

func toStreetRecordResponses(records []domain.StreetSearchRecord) []StreetRecordResponse {
	out := make([]StreetRecordResponse, 0, len(records))
	for _, r := range records {
		resp := StreetRecordResponse{
			StreetNumber: r.StreetNumber,
			Suffix:       r.Suffix,
			StreetType:   r.StreetType,
			StreetName:   r.StreetName,
			Commune:      r.Commune,
			PostalCode:   r.PostalCode,
			MutationID:   r.MutationID,
			Value:        r.Value,
		}
		if r.MutationDate != nil {
			date := r.MutationDate.Format(time.DateOnly)
			resp.MutationDate = &date
		}
		out = append(out, resp)
	}
	return out
}

func toStreetPageResponse(page *domain.StreetSearchPage) PageResponse[StreetRecordResponse] {
	return PageResponse[StreetRecordResponse]{
		Content:       toStreetRecordResponses(page.Records),
		TotalElements: page.TotalCount,
		TotalPages:    page.TotalPages(),
		Page:          page.Page,
		Size:          page.Size,
	}
}
