package postgres

import (
	"fmt"
	"strings"

	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/domain"
)

// Колонки таблицы объявлений для полей дерева условий
var listingColumns = map[domain.Field]string{
	domain.FieldSource:         "l.source",
	domain.FieldCommune:        "l.commune",
	domain.FieldPostalCode:     "l.code_postal",
	domain.FieldDepartment:     "l.departement",
	domain.FieldDepartmentCode: "l.code_departement",
	domain.FieldAddress:        "l.adresse",
	domain.FieldPropertyType:   "l.type_local",
	domain.FieldPrice:          "l.prix",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int

	// номера параметров с шаблонами спален, добавляются один раз на запрос
	bedroomPatternArgs []int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId: 1,
		args:  make([]interface{}, 0),
	}
}

// bind добавляет аргумент и возвращает его плейсхолдер
func (qb *queryBuilder) bind(arg interface{}) string {
	placeholder := fmt.Sprintf("$%d", qb.argId)
	qb.args = append(qb.args, arg)
	qb.argId++
	return placeholder
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

// addContains - ILIKE с экранированием спецсимволов шаблона
func (qb *queryBuilder) addContains(fieldName string, value string) {
	qb.addCondition("%s ILIKE $%d", fieldName, containsPattern(value))
}

// where создает финальный WHERE
func (qb *queryBuilder) where() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

// applyPredicate переводит дерево условий в SQL и добавляет его в WHERE.
func (qb *queryBuilder) applyPredicate(p domain.Predicate) error {
	if p == nil {
		return nil
	}
	sql, err := qb.compile(p)
	if err != nil {
		return err
	}
	qb.conditions = append(qb.conditions, sql)
	return nil
}

func (qb *queryBuilder) compile(p domain.Predicate) (string, error) {
	switch node := p.(type) {
	case domain.Equals:
		column, err := qb.stringColumn(node.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("LOWER(%s) = LOWER(%s)", column, qb.bind(node.Value)), nil

	case domain.Contains:
		column, err := qb.stringColumn(node.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ILIKE %s", column, qb.bind(containsPattern(node.Value))), nil

	case domain.Range:
		column, err := qb.numericExpr(node.Field)
		if err != nil {
			return "", err
		}
		parts := []string{column + " IS NOT NULL"}
		if node.Min != nil {
			parts = append(parts, fmt.Sprintf("%s >= %s", column, qb.bind(*node.Min)))
		}
		if node.Max != nil {
			parts = append(parts, fmt.Sprintf("%s <= %s", column, qb.bind(*node.Max)))
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil

	case domain.Or:
		if len(node) == 0 {
			return "FALSE", nil
		}
		return qb.join(node, " OR ")

	case domain.And:
		if len(node) == 0 {
			return "TRUE", nil
		}
		return qb.join(node, " AND ")
	}
	return "", fmt.Errorf("unsupported predicate node %T", p)
}

func (qb *queryBuilder) join(children []domain.Predicate, op string) (string, error) {
	parts := make([]string, 0, len(children))
	for _, child := range children {
		sql, err := qb.compile(child)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	return "(" + strings.Join(parts, op) + ")", nil
}

func (qb *queryBuilder) stringColumn(f domain.Field) (string, error) {
	column, ok := listingColumns[f]
	if !ok || f == domain.FieldPrice {
		return "", fmt.Errorf("field %q is not a text column", f)
	}
	return column, nil
}

func (qb *queryBuilder) numericExpr(f domain.Field) (string, error) {
	switch f {
	case domain.FieldPrice:
		return listingColumns[f], nil
	case domain.FieldBedrooms:
		return qb.bedroomExpr(), nil
	}
	return "", fmt.Errorf("field %q is not numeric", f)
}

// bedroomExpr - количество спален, извлеченное из details прямо в запросе.
// COALESCE берет первый сработавший шаблон, substring вернет NULL если совпадения нет.
func (qb *queryBuilder) bedroomExpr() string {
	if qb.bedroomPatternArgs == nil {
		for _, pattern := range domain.BedroomPatterns {
			qb.args = append(qb.args, pattern)
			qb.bedroomPatternArgs = append(qb.bedroomPatternArgs, qb.argId)
			qb.argId++
		}
	}

	parts := make([]string, len(qb.bedroomPatternArgs))
	for i, id := range qb.bedroomPatternArgs {
		parts[i] = fmt.Sprintf("substring(l.details FROM $%d::text)", id)
	}
	return "(COALESCE(" + strings.Join(parts, ", ") + "))::numeric"
}

func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}
