package domain

import "strings"

// Field - логическое имя колонки, по которой строится условие.
// Адаптеры сами решают, во что оно превращается (колонка SQL, поле структуры).
type Field string

const (
	FieldSource         Field = "source"
	FieldCommune        Field = "commune"
	FieldPostalCode     Field = "postal_code"
	FieldDepartment     Field = "department"
	FieldDepartmentCode Field = "department_code"
	FieldAddress        Field = "address"
	FieldPropertyType   Field = "property_type"
	FieldPrice          Field = "price"

	// вычисляемое поле: количество спален, извлеченное из details
	FieldBedrooms Field = "bedrooms"
)

// Predicate - узел дерева условий: Equals | Contains | Range | Or | And.
type Predicate interface {
	isPredicate()
}

// Equals - равенство строк без учета регистра
type Equals struct {
	Field Field
	Value string
}

// Contains - вхождение подстроки без учета регистра
type Contains struct {
	Field Field
	Value string
}

// Range - числовой диапазон, обе границы включительно и необязательны
type Range struct {
	Field Field
	Min   *float64
	Max   *float64
}

// Or - хотя бы одно из условий. Пустой Or ничему не соответствует.
type Or []Predicate

// And - все условия сразу. Пустой And соответствует всему.
type And []Predicate

func (Equals) isPredicate()   {}
func (Contains) isPredicate() {}
func (Range) isPredicate()    {}
func (Or) isPredicate()       {}
func (And) isPredicate()      {}

// Match вычисляет условие для объявления в памяти.
// Это второй способ исполнения того же дерева, что адаптер Postgres переводит в SQL.
func Match(p Predicate, l Listing) bool {
	switch node := p.(type) {
	case nil:
		return true
	case Equals:
		v, ok := l.stringField(node.Field)
		return ok && strings.EqualFold(v, node.Value)
	case Contains:
		v, ok := l.stringField(node.Field)
		return ok && strings.Contains(strings.ToLower(v), strings.ToLower(node.Value))
	case Range:
		v, ok := l.numericField(node.Field)
		if !ok {
			return false
		}
		if node.Min != nil && v < *node.Min {
			return false
		}
		if node.Max != nil && v > *node.Max {
			return false
		}
		return true
	case Or:
		for _, child := range node {
			if Match(child, l) {
				return true
			}
		}
		return false
	case And:
		for _, child := range node {
			if !Match(child, l) {
				return false
			}
		}
		return true
	}
	return false
}

func (l Listing) stringField(f Field) (string, bool) {
	switch f {
	case FieldSource:
		return l.Source, true
	case FieldCommune:
		return l.Commune, l.Commune != ""
	case FieldPostalCode:
		return l.PostalCode, l.PostalCode != ""
	case FieldDepartment:
		return l.Department, l.Department != ""
	case FieldDepartmentCode:
		return l.DepartmentCode, l.DepartmentCode != ""
	case FieldAddress:
		return l.Address, l.Address != ""
	case FieldPropertyType:
		return l.PropertyType, l.PropertyType != ""
	}
	return "", false
}

func (l Listing) numericField(f Field) (float64, bool) {
	switch f {
	case FieldPrice:
		if l.Price == nil {
			return 0, false
		}
		return *l.Price, true
	case FieldBedrooms:
		n, ok := ExtractBedroomCount(l.Details)
		return float64(n), ok
	}
	return 0, false
}
