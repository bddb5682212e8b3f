package domain

import "strings"

// ListingLess - фиксированный порядок выдачи объявлений:
// source ASC, created_at DESC (NULL в конце), id ASC.
// Нужен для стабильной пагинации при повторных запросах.
func ListingLess(a, b Listing) bool {
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	switch {
	case a.CreatedAt == nil && b.CreatedAt != nil:
		return false
	case a.CreatedAt != nil && b.CreatedAt == nil:
		return true
	case a.CreatedAt != nil && b.CreatedAt != nil && !a.CreatedAt.Equal(*b.CreatedAt):
		return a.CreatedAt.After(*b.CreatedAt)
	}
	return a.ID < b.ID
}

// StreetKeyLess - естественный порядок индекса, по его ключу.
func StreetKeyLess(a, b StreetSearchRecord) bool {
	an, bn := streetNumberOrMax(a.StreetNumber), streetNumberOrMax(b.StreetNumber)
	if an != bn {
		return an < bn
	}
	if c := strings.Compare(a.Suffix, b.Suffix); c != 0 {
		return c < 0
	}
	if c := strings.Compare(a.StreetType, b.StreetType); c != 0 {
		return c < 0
	}
	if c := strings.Compare(a.StreetName, b.StreetName); c != 0 {
		return c < 0
	}
	if c := strings.Compare(a.Commune, b.Commune); c != 0 {
		return c < 0
	}
	if c := strings.Compare(a.PostalCode, b.PostalCode); c != 0 {
		return c < 0
	}
	return a.MutationID < b.MutationID
}

// MutationRecencyLess - порядок быстрого поиска: самые свежие мутации первыми.
func MutationRecencyLess(a, b StreetSearchRecord) bool {
	switch {
	case a.MutationDate == nil && b.MutationDate != nil:
		return false
	case a.MutationDate != nil && b.MutationDate == nil:
		return true
	case a.MutationDate != nil && b.MutationDate != nil && !a.MutationDate.Equal(*b.MutationDate):
		return a.MutationDate.After(*b.MutationDate)
	}
	return a.MutationID > b.MutationID
}

// NULL в Postgres при ASC идет последним
func streetNumberOrMax(n *int) int {
	if n == nil {
		return int(^uint(0) >> 1)
	}
	return *n
}
