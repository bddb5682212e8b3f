package usecase

import (
	"fmt"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

// BuildListingPredicate собирает дерево условий для поиска объявлений.
// Локация обязательна, все остальное добавляется через AND только если задано.
func BuildListingPredicate(criteria domain.SearchCriteria, bedrooms domain.BedroomFilter) (domain.Predicate, error) {
	location, err := locationPredicate(criteria)
	if err != nil {
		return nil, err
	}

	conditions := domain.And{location}

	if criteria.MinBudget != nil || criteria.MaxBudget != nil {
		conditions = append(conditions, domain.Range{
			Field: domain.FieldPrice,
			Min:   criteria.MinBudget,
			Max:   criteria.MaxBudget,
		})
	}

	if criteria.PropertyType != "" {
		conditions = append(conditions, domain.Contains{Field: domain.FieldPropertyType, Value: criteria.PropertyType})
	}

	if clause := bedroomPredicate(bedrooms); clause != nil {
		conditions = append(conditions, clause)
	}

	return conditions, nil
}

func locationPredicate(criteria domain.SearchCriteria) (domain.Predicate, error) {
	locationType, ok := domain.ParseLocationType(criteria.LocationType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown location type %q", domain.ErrInvalidRequest, criteria.LocationType)
	}

	value := criteria.LocationValue
	switch locationType {
	case domain.LocationCommune:
		return domain.Equals{Field: domain.FieldCommune, Value: value}, nil
	case domain.LocationPostalCode:
		return domain.Equals{Field: domain.FieldPostalCode, Value: value}, nil
	case domain.LocationDepartment:
		// Название департамента или его код. Одна и та же пара колонок
		// используется и для подсчета, и для выборки строк.
		return domain.Or{
			domain.Equals{Field: domain.FieldDepartment, Value: value},
			domain.Equals{Field: domain.FieldDepartmentCode, Value: value},
		}, nil
	default:
		return domain.Contains{Field: domain.FieldAddress, Value: value}, nil
	}
}

// bedroomPredicate - nil, если фильтра по спальням нет
func bedroomPredicate(filter domain.BedroomFilter) domain.Predicate {
	if filter.IsEmpty() {
		return nil
	}

	if filter.IsThreshold() {
		min := float64(filter.Minimum)
		return domain.Range{Field: domain.FieldBedrooms, Min: &min}
	}

	anyOf := make(domain.Or, 0, len(filter.Values))
	for _, v := range filter.Values {
		exact := float64(v)
		anyOf = append(anyOf, domain.Range{Field: domain.FieldBedrooms, Min: &exact, Max: &exact})
	}
	return anyOf
}
