package llm

import (
	"strings"

	"mediatracker/constants"
)

// BuildSystemPrompt composes the system message: target schema, enum
// constraints, and the normalization rules the transform stage expects
// the model to have already applied.
func BuildSystemPrompt(req CleanRequest) string {
	media := strings.Join(constants.MediaAsStringSlice(), ", ")
	statuses := strings.Join(constants.StatusesAsStringSlice(), ", ")

	parts := []string{
		"You are a data-cleaning assistant for a personal media tracker. The user pastes messy tabular text (CSV, TSV, or free-form columns with a header row).",
		"Return ONLY one JSON object with exactly two keys: 'entries' (array of row objects) and 'errors' (array of strings describing rows you could not clean).",
		"Each entry object has these fields: title (string, required), medium, type, season, platform, language, length, status, start_date, finish_date, poster_url, imdb_id (strings or null), episodes (integer or null), price, my_rating, average_rating (numbers or null), genre (array of strings or null).",
		"Medium must be one of: " + media + ".",
		"Status must be one of: " + statuses + ".",
		"Use ISO-8601 dates (YYYY-MM-DD).",
		"Ratings are on a 10-point scale; rescale fractions like '4/5' to 8.",
		"Treat empty cells, 'N/A', and '-' as null.",
		"Genre is always an array, split on commas.",
		"Skip rows with no recognizable title and add one line per skipped row to 'errors'.",
		"Do not invent data. If a value is absent, output null.",
	}
	if m := strings.TrimSpace(req.DefaultMedium); m != "" {
		parts = append(parts, "When a row has no medium column, assume: "+m+".")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt embeds the raw pasted text. Very large pastes are
// truncated; the row cap keeps one batch inside the model's output budget.
func BuildUserPrompt(req CleanRequest) string {
	raw := strings.TrimSpace(req.RawText)

	var b strings.Builder
	b.WriteString("Clean the following pasted table into the target schema.\n\nRaw text:\n")
	if len(raw) > 12000 {
		b.WriteString(raw[:12000])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(raw)
	}
	b.WriteString("\n\nReturn ONLY the JSON object.")
	return b.String()
}
