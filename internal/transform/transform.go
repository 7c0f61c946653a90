// Package transform maps loosely-typed rows (AI-cleaned or directly pasted)
// into the canonical entry shape, applying the field normalizers and
// computing derived fields.
package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mediatracker/constants"
	"mediatracker/internal/entity"
	"mediatracker/internal/normalize"
)

// Header aliases per canonical field, in resolution order. First non-null
// wins. Keys are matched after normalization (lowercase, separators
// collapsed to single spaces), so "My Rating", "my_rating", and "myRating"
// headers all resolve.
var (
	titleAliases     = []string{"title", "name"}
	mediumAliases    = []string{"medium", "category", "media type"}
	typeAliases      = []string{"type", "sub type", "subtype"}
	seasonAliases    = []string{"season", "seasons"}
	platformAliases  = []string{"platform", "service", "where", "watched on"}
	languageAliases  = []string{"language", "languages", "lang"}
	episodesAliases  = []string{"episodes", "episode count", "eps"}
	lengthAliases    = []string{"length", "duration", "runtime", "time", "pages"}
	priceAliases     = []string{"price", "cost", "paid"}
	myRatingAliases  = []string{"my rating", "rating", "myrating", "personal rating", "score"}
	avgRatingAliases = []string{"average rating", "avg rating", "imdb rating", "public rating"}
	statusAliases    = []string{"status", "state", "progress"}
	startAliases     = []string{"start date", "started", "date started", "start"}
	finishAliases    = []string{"finish date", "finished", "date finished", "end date", "finish"}
	timeTakenAliases = []string{"time taken", "days taken"}
	genreAliases     = []string{"genre", "genres"}
	posterAliases    = []string{"poster url", "poster", "image"}
	imdbAliases      = []string{"imdb id", "imdb"}
)

// Rows converts a batch of rows into cleaned entries. Rows without a title
// are dropped, with one human-readable error string each.
func Rows(rows []map[string]any) ([]entity.CleanedEntry, []string) {
	entries := make([]entity.CleanedEntry, 0, len(rows))
	var errs []string

	for i, row := range rows {
		entry, ok := Row(row)
		if !ok {
			errs = append(errs, fmt.Sprintf("row %d: missing title, skipped", i+1))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, errs
}

// Row converts one row. The second return is false when the row has no
// usable title.
func Row(row map[string]any) (entity.CleanedEntry, bool) {
	r := indexRow(row)

	title, _ := r.str(titleAliases)
	title = strings.TrimSpace(title)
	if title == "" || normalize.IsNullish(title) {
		return entity.CleanedEntry{}, false
	}

	e := entity.CleanedEntry{Title: title}

	if s, ok := r.str(mediumAliases); ok && !normalize.IsNullish(s) {
		if m, known := constants.CanonicalizeMedium(s); known {
			e.Medium = strPtr(string(m))
		} else {
			e.Medium = strPtr(strings.TrimSpace(s))
		}
	}
	if s, ok := r.str(typeAliases); ok && !normalize.IsNullish(s) {
		e.Type = strPtr(strings.TrimSpace(s))
	}
	if v, ok := r.any(seasonAliases); ok {
		e.Season = normalize.Season(v)
	}
	if s, ok := r.str(platformAliases); ok && !normalize.IsNullish(s) {
		e.Platform = strPtr(strings.TrimSpace(s))
	}
	if v, ok := r.any(languageAliases); ok {
		e.Language = normalize.SplitList(v)
	}
	if v, ok := r.any(genreAliases); ok {
		e.Genre = normalize.SplitList(v)
	}
	if v, ok := r.any(episodesAliases); ok {
		e.Episodes = intValue(v)
	}
	if v, ok := r.any(lengthAliases); ok {
		e.Length = lengthValue(v)
	}
	if v, ok := r.any(priceAliases); ok {
		e.Price = normalize.Price(v)
	}

	// Historically-used rating headers: first alias with a parseable
	// value wins.
	for _, alias := range myRatingAliases {
		if v, ok := r.one(alias); ok {
			if rating := normalize.Rating(v); rating != nil {
				e.MyRating = rating
				break
			}
		}
	}
	for _, alias := range avgRatingAliases {
		if v, ok := r.one(alias); ok {
			if rating := normalize.Rating(v); rating != nil {
				e.AverageRating = rating
				break
			}
		}
	}

	if s, ok := r.str(statusAliases); ok {
		if st, known := constants.CanonicalizeStatus(s); known {
			e.Status = strPtr(string(st))
		}
	}

	if s, ok := r.str(startAliases); ok {
		e.StartDate = normalize.Date(s)
	}
	if s, ok := r.str(finishAliases); ok {
		e.FinishDate = normalize.Date(s)
	}
	if s, ok := r.str(timeTakenAliases); ok && !normalize.IsNullish(s) {
		e.TimeTaken = strPtr(strings.TrimSpace(s))
	}
	if e.TimeTaken == nil {
		e.TimeTaken = elapsedDays(e.StartDate, e.FinishDate)
	}

	if s, ok := r.str(posterAliases); ok && !normalize.IsNullish(s) {
		e.PosterURL = strPtr(strings.TrimSpace(s))
	}
	if s, ok := r.str(imdbAliases); ok && !normalize.IsNullish(s) {
		e.ImdbID = strPtr(strings.TrimSpace(s))
	}

	return e, true
}

// elapsedDays computes the inclusive day count between two ISO dates,
// rendered as "1 day" or "<n> days". Invalid or reversed pairs yield nil.
func elapsedDays(start, finish *string) *string {
	if start == nil || finish == nil {
		return nil
	}
	from, err := time.Parse("2006-01-02", *start)
	if err != nil {
		return nil
	}
	to, err := time.Parse("2006-01-02", *finish)
	if err != nil {
		return nil
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		return nil
	}
	if days == 1 {
		return strPtr("1 day")
	}
	return strPtr(fmt.Sprintf("%d days", days))
}

// lengthValue canonicalizes the length cell: duration spellings become
// "<n> min", page spellings become "<n> pages", anything else passes
// through trimmed.
func lengthValue(v any) *string {
	if mins := normalize.Duration(v); mins != nil {
		return strPtr(fmt.Sprintf("%d min", *mins))
	}
	if pages := normalize.Pages(v); pages != nil {
		return strPtr(fmt.Sprintf("%d pages", *pages))
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if !normalize.IsNullish(s) {
			return &s
		}
	}
	return nil
}

func intValue(v any) *int {
	switch t := v.(type) {
	case float64:
		n := int(t)
		return &n
	case int:
		return &t
	case string:
		s := strings.TrimSpace(t)
		if normalize.IsNullish(s) {
			return nil
		}
		if n, err := strconv.Atoi(s); err == nil {
			return &n
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }

// rowIndex looks rows up by normalized header name.
type rowIndex map[string]any

func indexRow(row map[string]any) rowIndex {
	idx := make(rowIndex, len(row))
	for k, v := range row {
		idx[normKey(k)] = v
	}
	return idx
}

func normKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.NewReplacer("_", " ", "-", " ").Replace(k)
	return strings.Join(strings.Fields(k), " ")
}

func (r rowIndex) one(alias string) (any, bool) {
	v, ok := r[alias]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r rowIndex) any(aliases []string) (any, bool) {
	for _, a := range aliases {
		if v, ok := r.one(a); ok {
			return v, true
		}
	}
	return nil, false
}

func (r rowIndex) str(aliases []string) (string, bool) {
	v, ok := r.any(aliases)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), true
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return fmt.Sprintf("%v", t), true
	}
}
