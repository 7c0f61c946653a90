// Package normalize holds the pure field normalizers used by the import
// transform. Every function maps a loosely-typed cell value to a canonical
// form; malformed input yields nil, never an error.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reClock    = regexp.MustCompile(`^(\d+):(\d{1,2})(?::(\d{1,2}))?$`)
	reHoursMin = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)\s*(?:h|hr|hrs|hour|hours)\s*(\d+)\s*(?:m|min|mins|minute|minutes)?$`)
	reMinutes  = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)\s*(?:m|min|mins|minute|minutes)$`)
	reHours    = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)\s*(?:h|hr|hrs|hour|hours)$`)
	reNumber   = regexp.MustCompile(`^\d+(?:[.,]\d+)?$`)
	reFraction = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*/\s*(\d+(?:[.,]\d+)?)$`)
	rePercent  = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*%$`)
	reISODate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDMY      = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})$`)
	rePages    = regexp.MustCompile(`^(\d+)`)
	reCurrency = regexp.MustCompile(`[$€£¥₹₩\s]`)
)

// IsNullish reports whether a cell value stands for "no value":
// empty, "N/A", "-", "null", in any casing.
func IsNullish(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n/a", "na", "-", "null", "none":
		return true
	}
	return false
}

// asString renders scalar cell values uniformly; numbers come out of JSON
// decoding as float64.
func asString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(t), true
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t)), true
	}
}

// Duration converts heterogeneous duration spellings to whole minutes.
// Recognized, in priority order: "H:MM[:SS]" clock form, "Xh Ym",
// bare "X minutes", bare "Xh", and a bare number (assumed minutes).
func Duration(v any) *int {
	s, ok := asString(v)
	if !ok || IsNullish(s) {
		return nil
	}

	if m := reClock.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		total := h*60 + mm
		return &total
	}
	if m := reHoursMin.FindStringSubmatch(s); m != nil {
		h := parseDecimal(m[1])
		mm, _ := strconv.Atoi(m[2])
		total := int(h*60) + mm
		return &total
	}
	if m := reMinutes.FindStringSubmatch(s); m != nil {
		total := int(parseDecimal(m[1]))
		return &total
	}
	if m := reHours.FindStringSubmatch(s); m != nil {
		total := int(parseDecimal(m[1]) * 60)
		return &total
	}
	if reNumber.MatchString(s) {
		total := int(parseDecimal(s))
		return &total
	}
	return nil
}

// Price converts price spellings to a float amount. "Free" and the empty
// string mean 0; currency symbols and whitespace are stripped and a comma
// decimal separator is tolerated.
func Price(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case int:
		f := float64(t)
		return &f
	}

	s, ok := asString(v)
	if !ok {
		return nil
	}
	if strings.EqualFold(s, "free") || s == "" {
		zero := 0.0
		return &zero
	}

	s = reCurrency.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Rating normalizes a rating onto a 10-point scale. "X/Y" is rescaled as
// (X/Y)*10; a trailing "%" divides by 10. Callers rely on "85%" meaning
// 8.5, not a proportion of a stated max, so keep that exact behavior.
// Otherwise the bare number is parsed, comma decimal tolerated.
func Rating(v any) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}

	s, ok := asString(v)
	if !ok || IsNullish(s) {
		return nil
	}

	if m := reFraction.FindStringSubmatch(s); m != nil {
		num := parseDecimal(m[1])
		den := parseDecimal(m[2])
		if den == 0 {
			return nil
		}
		r := num / den * 10
		return &r
	}
	if m := rePercent.FindStringSubmatch(s); m != nil {
		r := parseDecimal(m[1]) / 10
		return &r
	}

	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// dateLayouts are the generic forms tried before positional disambiguation.
var dateLayouts = []string{
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006/01/02",
}

// Date converts a date spelling to ISO YYYY-MM-DD. Already-ISO input passes
// through. Numeric triples are disambiguated with the heuristic "if the
// first number exceeds 12, it must be the day"; otherwise M/D/Y is assumed.
func Date(s string) *string {
	s = strings.TrimSpace(s)
	if IsNullish(s) {
		return nil
	}
	if reISODate.MatchString(s) {
		if _, err := time.Parse("2006-01-02", s); err == nil {
			return &s
		}
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			iso := t.Format("2006-01-02")
			return &iso
		}
	}

	m := reDMY.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		year += 2000
	}

	day, month := second, first
	if first > 12 {
		day, month = first, second
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return nil
	}
	iso := t.Format("2006-01-02")
	return &iso
}

// Pages extracts the leading integer from spellings like "350 pages" or "350p".
func Pages(v any) *int {
	s, ok := asString(v)
	if !ok || IsNullish(s) {
		return nil
	}
	m := rePages.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// Season renders a season cell: a bare integer becomes "Season <n>",
// nullish markers become nil, anything else passes through trimmed.
func Season(v any) *string {
	s, ok := asString(v)
	if !ok || IsNullish(s) {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		label := "Season " + strconv.Itoa(n)
		return &label
	}
	return &s
}

// SplitList accepts an already-split array or a comma-separated string and
// returns a trimmed list. Nullish input yields nil.
func SplitList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return trimAll(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := asString(item); ok {
				parts = append(parts, s)
			}
		}
		return trimAll(parts)
	}

	s, ok := asString(v)
	if !ok || IsNullish(s) {
		return nil
	}
	return trimAll(strings.Split(s, ","))
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseDecimal(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return f
}
