package constants

import (
	"strings"
)

// Medium is the top-level category of a tracked item.
type Medium string

// Stable values (store these exact strings in DB).
const (
	Movie   Medium = "Movie"
	TVShow  Medium = "TV Show"
	Book    Medium = "Book"
	Game    Medium = "Game"
	Podcast Medium = "Podcast"
	Music   Medium = "Music"
	Food    Medium = "Food"
	OtherM  Medium = "Other"
)

var allMedia = []Medium{
	Movie,
	TVShow,
	Book,
	Game,
	Podcast,
	Music,
	Food,
	OtherM,
}

// MediaAsStringSlice returns all media labels for prompt enums.
func MediaAsStringSlice() []string {
	result := make([]string, len(allMedia))
	for i, m := range allMedia {
		result[i] = string(m)
	}
	return result
}

// CanonicalizeMedium maps free-form medium labels (and common synonyms)
// onto the canonical enum. Returns false when the label is unknown.
func CanonicalizeMedium(input string) (Medium, bool) {
	if input == "" {
		return OtherM, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Medium{
		"film":       Movie,
		"movies":     Movie,
		"cinema":     Movie,
		"tv":         TVShow,
		"television": TVShow,
		"series":     TVShow,
		"show":       TVShow,
		"tvshow":     TVShow,
		"anime":      TVShow,
		"novel":      Book,
		"books":      Book,
		"audiobook":  Book,
		"manga":      Book,
		"comic":      Book,
		"videogame":  Game,
		"video game": Game,
		"games":      Game,
		"pod":        Podcast,
		"podcasts":   Podcast,
		"album":      Music,
		"song":       Music,
		"restaurant": Food,
		"dish":       Food,
	}
	if m, ok := synonyms[normalized]; ok {
		return m, true
	}

	for _, m := range allMedia {
		if strings.EqualFold(string(m), normalized) ||
			strings.EqualFold(strings.ReplaceAll(string(m), " ", ""), strings.ReplaceAll(normalized, " ", "")) {
			return m, true
		}
	}
	return OtherM, false
}

// MediaTypeHint returns the search-type hint ("movie", "tv") for a medium,
// or "" when the medium has no screen equivalent.
func MediaTypeHint(m Medium) string {
	switch m {
	case Movie:
		return "movie"
	case TVShow:
		return "tv"
	default:
		return ""
	}
}
