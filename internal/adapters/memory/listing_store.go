package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/contextkeys"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
)

// ListingStore - хранилище объявлений в памяти. Условия вычисляются через domain.Match,
// поэтому результаты совпадают с Postgres-адаптером на тех же данных.
type ListingStore struct {
	mu       sync.RWMutex
	listings []domain.Listing
}

func NewListingStore(listings ...domain.Listing) *ListingStore {
	s := &ListingStore{}
	s.Add(listings...)
	return s
}

// Add добавляет записи, порядок хранения всегда domain.ListingLess
func (s *ListingStore) Add(listings ...domain.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listings = append(s.listings, listings...)
	sort.SliceStable(s.listings, func(i, j int) bool {
		return domain.ListingLess(s.listings[i], s.listings[j])
	})
}

func (s *ListingStore) FindListings(ctx context.Context, filter domain.Predicate, page domain.PageRequest) (*domain.ListingPage, error) {
	page = page.Normalize()

	s.mu.RLock()
	var matched []domain.Listing
	for _, l := range s.listings {
		if filter == nil || domain.Match(filter, l) {
			matched = append(matched, l)
		}
	}
	s.mu.RUnlock()

	result := &domain.ListingPage{
		Listings:   []domain.Listing{},
		TotalCount: len(matched),
		Page:       page.Page,
		Size:       page.Size,
	}
	if offset := page.Offset(); offset < len(matched) {
		end := min(offset+page.Size, len(matched))
		result.Listings = append(result.Listings, matched[offset:end]...)
	}

	contextkeys.LoggerFromContext(ctx).Debug("Memory listings search finished", port.Fields{
		"component":   "memory.ListingStore",
		"total_count": result.TotalCount,
		"count":       len(result.Listings),
	})
	return result, nil
}

type candidateGroup struct {
	value  string
	paired string
	count  int
}

// groupSpec описывает, как из записи получить ключ группы и значения кандидата
type groupSpec struct {
	value  func(l domain.Listing) string
	paired func(l domain.Listing) string
	accept func(l domain.Listing) bool
}

var groupSpecs = map[domain.SuggestionCategory]groupSpec{
	domain.CategoryDepartment: {
		value:  func(l domain.Listing) string { return l.Department },
		paired: func(domain.Listing) string { return "" },
	},
	domain.CategoryCommune: {
		value:  func(l domain.Listing) string { return l.Commune },
		paired: func(l domain.Listing) string { return l.PostalCode },
		accept: func(l domain.Listing) bool { return strings.TrimSpace(l.PostalCode) != "" },
	},
	domain.CategoryPostalCode: {
		value:  func(l domain.Listing) string { return l.PostalCode },
		paired: func(l domain.Listing) string { return strings.TrimSpace(l.Commune) },
	},
	domain.CategoryAddress: {
		value:  func(l domain.Listing) string { return l.Address },
		paired: func(domain.Listing) string { return "" },
		accept: func(l domain.Listing) bool { return strings.TrimSpace(l.Address) != "" },
	},
}

// FindLocationCandidates группирует по значению без учета регистра, представитель - минимальное значение
func (s *ListingStore) FindLocationCandidates(ctx context.Context, category domain.SuggestionCategory, query string, limit int) ([]domain.SuggestionCandidate, error) {
	spec, ok := groupSpecs[category]
	if !ok {
		return nil, domain.ErrInvalidRequest
	}
	needle := strings.ToLower(query)

	groups := make(map[[2]string]*candidateGroup)
	s.mu.RLock()
	for _, l := range s.listings {
		value := spec.value(l)
		if value == "" || !strings.Contains(strings.ToLower(value), needle) {
			continue
		}
		if spec.accept != nil && !spec.accept(l) {
			continue
		}
		paired := spec.paired(l)
		key := [2]string{strings.ToLower(value), strings.ToLower(paired)}
		g, exists := groups[key]
		if !exists {
			groups[key] = &candidateGroup{value: value, paired: paired, count: 1}
			continue
		}
		g.count++
		if value < g.value {
			g.value = value
		}
		if paired < g.paired {
			g.paired = paired
		}
	}
	s.mu.RUnlock()

	sorted := make([]*candidateGroup, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		if sorted[i].value != sorted[j].value {
			return sorted[i].value < sorted[j].value
		}
		return sorted[i].paired < sorted[j].paired
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	candidates := make([]domain.SuggestionCandidate, 0, len(sorted))
	for _, g := range sorted {
		candidates = append(candidates, domain.NewLocationCandidate(category, g.value, g.paired, g.count))
	}
	return candidates, nil
}

func (s *ListingStore) Ping(context.Context) error {
	return nil
}
