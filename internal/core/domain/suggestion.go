package domain

import "sort"

// SuggestionCategory - тип подсказки
type SuggestionCategory string

const (
	CategoryDepartment SuggestionCategory = "department"
	CategoryCommune    SuggestionCategory = "commune"
	CategoryPostalCode SuggestionCategory = "postalCode"
	CategoryAddress    SuggestionCategory = "address"
)

// SuggestionCategories - все категории в порядке приоритета
var SuggestionCategories = []SuggestionCategory{
	CategoryDepartment,
	CategoryCommune,
	CategoryPostalCode,
	CategoryAddress,
}

// Rank - приоритет категории при сортировке, меньше = выше.
func (c SuggestionCategory) Rank() int {
	switch c {
	case CategoryDepartment:
		return 1
	case CategoryCommune:
		return 2
	case CategoryPostalCode:
		return 3
	case CategoryAddress:
		return 4
	}
	return 5
}

// SuggestionCandidate - один вариант автодополнения.
type SuggestionCandidate struct {
	Value    string
	Label    string
	Category SuggestionCategory
	Count    int
}

type suggestionKey struct {
	value    string
	label    string
	category SuggestionCategory
}

// RankSuggestions склеивает одинаковые (value, label, category), суммируя счетчики,
// сортирует по категории, затем по убыванию счетчика, затем по value и обрезает до limit.
func RankSuggestions(candidates []SuggestionCandidate, limit int) []SuggestionCandidate {
	merged := make([]SuggestionCandidate, 0, len(candidates))
	index := make(map[suggestionKey]int, len(candidates))

	for _, c := range candidates {
		key := suggestionKey{value: c.Value, label: c.Label, category: c.Category}
		if i, ok := index[key]; ok {
			merged[i].Count += c.Count
			continue
		}
		index[key] = len(merged)
		merged = append(merged, c)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Category.Rank() != b.Category.Rank() {
			return a.Category.Rank() < b.Category.Rank()
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Value < b.Value
	})

	if limit >= 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// CommuneLabel - подпись вида "Paris (75001)"
func CommuneLabel(commune, postalCode string) string {
	return commune + " (" + postalCode + ")"
}

// NewLocationCandidate формирует кандидата с подписью по категории.
// paired - почтовый код для коммуны или коммуна для почтового кода (может быть пустой).
func NewLocationCandidate(category SuggestionCategory, value, paired string, count int) SuggestionCandidate {
	c := SuggestionCandidate{Value: value, Label: value, Category: category, Count: count}
	switch category {
	case CategoryCommune:
		c.Label = CommuneLabel(value, paired)
	case CategoryPostalCode:
		if paired != "" {
			c.Label = CommuneLabel(paired, value)
		}
	}
	return c
}
