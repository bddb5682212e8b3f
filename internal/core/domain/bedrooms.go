package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	BedroomThreshold = 5
	maxBedroomValues = 4
	minBedroomValue  = 1
	maxBedroomValue  = 99
)

// Шаблоны извлечения количества спален из текста "details".
// Порядок важен: берется первый сработавший шаблон.
// В каждом ровно одна захватывающая группа - так их понимает и Postgres (substring ... FROM).
var BedroomPatterns = []string{
	`(?i)chambres?\s*:\s*(\d+)`,
	`(?i)(\d+)\s*ch\.`,
	`(?i)(\d+)\s*chambre`,
}

var bedroomRegexps = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(BedroomPatterns))
	for _, p := range BedroomPatterns {
		res = append(res, regexp.MustCompile(p))
	}
	return res
}()

// BedroomFilter - фильтр по количеству спален.
// Либо набор точных значений (OR), либо минимальный порог, либо ничего.
type BedroomFilter struct {
	Values  []int
	Minimum int
}

// IsEmpty - фильтр отсутствует, подходит любая запись
func (f BedroomFilter) IsEmpty() bool {
	return len(f.Values) == 0 && f.Minimum == 0
}

// IsThreshold - фильтр вида "5+"
func (f BedroomFilter) IsThreshold() bool {
	return f.Minimum > 0
}

// String возвращает каноническую форму: "2,3,4", "5+" или "".
// Набор из одной пятерки пишется как "5,": голое "5" разбирается как порог.
func (f BedroomFilter) String() string {
	if f.IsThreshold() {
		return strconv.Itoa(f.Minimum) + "+"
	}
	if len(f.Values) == 1 && f.Values[0] == BedroomThreshold {
		return strconv.Itoa(BedroomThreshold) + ","
	}
	parts := make([]string, len(f.Values))
	for i, v := range f.Values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Matches проверяет извлеченное количество спален.
func (f BedroomFilter) Matches(count int, ok bool) bool {
	if f.IsEmpty() {
		return true
	}
	if !ok {
		return false
	}
	if f.IsThreshold() {
		return count >= f.Minimum
	}
	for _, v := range f.Values {
		if v == count {
			return true
		}
	}
	return false
}

// ParseBedroomSpec разбирает строку вида "2,3,4", "5+" или "5".
// Никогда не падает: мусор просто отбрасывается.
func ParseBedroomSpec(raw string) BedroomFilter {
	spec := strings.TrimSpace(raw)
	if spec == "" {
		return BedroomFilter{}
	}

	// "5" и "5+" намеренно означают одно и то же
	if spec == "5" || spec == "5+" {
		return BedroomFilter{Minimum: BedroomThreshold}
	}

	tokens := strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == ';' })

	var values []int
	for _, token := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || n < minBedroomValue || n > maxBedroomValue {
			continue
		}
		values = append(values, n)
		if len(values) == maxBedroomValues {
			break
		}
	}

	if len(values) == 0 {
		return BedroomFilter{}
	}
	return BedroomFilter{Values: values}
}

// ExtractBedroomCount достает количество спален из свободного текста.
func ExtractBedroomCount(details string) (int, bool) {
	if details == "" {
		return 0, false
	}
	for _, re := range bedroomRegexps {
		m := re.FindStringSubmatch(details)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// в Postgres значение приводится к numeric, так что огромное число просто "очень большое"
			return math.MaxInt, true
		}
		return n, true
	}
	return 0, false
}
