package domain

import (
	"strings"
	"time"
)

const (
	DefaultFastSearchLimit = 100
	MaxFastSearchLimit     = 1000
)

// StreetSearchRecord - строка материализованного представления для быстрого поиска по адресу.
type StreetSearchRecord struct {
	StreetNumber *int
	Suffix       string
	StreetType   string
	StreetName   string
	Commune      string
	PostalCode   string

	MutationID   int64
	MutationDate *time.Time
	Value        *float64
}

// StreetSearchFilters - фильтры поиска по индексу. Пустое поле = фильтра нет.
type StreetSearchFilters struct {
	StreetNumber *int   // novoie, точное совпадение
	Suffix       string // btq, точное без учета регистра
	StreetType   string // typvoie, точное без учета регистра
	StreetName   string // voie, подстрока
	Commune      string // подстрока
	PostalCode   string // точное совпадение
}

// Matches - проверка записи индекса в памяти
func (f StreetSearchFilters) Matches(r StreetSearchRecord) bool {
	if f.StreetNumber != nil && (r.StreetNumber == nil || *r.StreetNumber != *f.StreetNumber) {
		return false
	}
	if f.Suffix != "" && !strings.EqualFold(r.Suffix, f.Suffix) {
		return false
	}
	if f.StreetType != "" && !strings.EqualFold(r.StreetType, f.StreetType) {
		return false
	}
	if f.StreetName != "" && !containsFold(r.StreetName, f.StreetName) {
		return false
	}
	if f.Commune != "" && !containsFold(r.Commune, f.Commune) {
		return false
	}
	if f.PostalCode != "" && r.PostalCode != f.PostalCode {
		return false
	}
	return true
}

// StreetSearchPage - страница результатов поиска по индексу
type StreetSearchPage struct {
	Records    []StreetSearchRecord
	TotalCount int
	Page       int
	Size       int
}

// TotalPages считает количество страниц для текущего размера.
func (p StreetSearchPage) TotalPages() int {
	return totalPages(p.TotalCount, p.Size)
}

// ClampFastSearchLimit приводит лимит быстрого поиска к [1, MaxFastSearchLimit].
func ClampFastSearchLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxFastSearchLimit {
		return MaxFastSearchLimit
	}
	return limit
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
