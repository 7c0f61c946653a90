package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	reFence         = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	reTrailingComma = regexp.MustCompile(`,\s*([\]}])`)
	reEntriesKey    = regexp.MustCompile(`"entries"\s*:\s*\[`)
)

// ErrSchema marks well-formed JSON that lacks the required 'entries' array.
// It is reported distinctly from parse failures.
var ErrSchema = errors.New("response missing 'entries' array")

// ParseError preserves the original decoder error after every repair pass
// has been exhausted.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ExtractPayload locates the JSON payload inside free model text: the
// interior of a fenced code block when one exists, otherwise the substring
// between the first '{' and the last '}'.
func ExtractPayload(text string) string {
	if m := reFence.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return strings.TrimSpace(text)
}

// StripTrailingCommas removes commas immediately preceding a closing bracket
// or brace. This is the only textual repair applied; it never touches
// content inside string values in practice because the model's trailing
// commas sit between structural tokens.
func StripTrailingCommas(s string) string {
	return reTrailingComma.ReplaceAllString(s, "$1")
}

// DecodeBatch coerces free model text into a RawBatch using a layered
// strategy: payload extraction, direct parse, trailing-comma repair, and
// finally rescuing just the entries array. The original parser error is
// preserved when everything fails; a structurally invalid result (no
// 'entries' array) is a schema error, not a parse error.
func DecodeBatch(text string) (RawBatch, error) {
	payload := ExtractPayload(text)

	doc := []byte(payload)
	var parseErr error
	if err := json.Unmarshal(doc, new(map[string]json.RawMessage)); err != nil {
		parseErr = err

		repaired := []byte(StripTrailingCommas(payload))
		if err := json.Unmarshal(repaired, new(map[string]json.RawMessage)); err == nil {
			doc = repaired
			parseErr = nil
		} else if arr, ok := rescueEntriesArray(text); ok {
			synthesized, mErr := json.Marshal(map[string]json.RawMessage{
				"entries": arr,
				"errors":  json.RawMessage("[]"),
			})
			if mErr == nil {
				doc = synthesized
				parseErr = nil
			}
		}
	}
	if parseErr != nil {
		return RawBatch{}, &ParseError{Cause: parseErr}
	}

	if err := ValidateJSONAgainstSchema(BuildBatchJSONSchema(), doc); err != nil {
		return RawBatch{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}

	var batch RawBatch
	if err := json.Unmarshal(doc, &batch); err != nil {
		return RawBatch{}, &ParseError{Cause: err}
	}
	if batch.Entries == nil {
		batch.Entries = []map[string]any{}
	}
	if batch.Errors == nil {
		batch.Errors = []string{}
	}
	return batch, nil
}

// rescueEntriesArray pulls the '"entries": [ ... ]' array out of otherwise
// unparseable text. Bracket depth is tracked manually (string-aware) so
// nested arrays inside rows do not end the capture early.
func rescueEntriesArray(text string) (json.RawMessage, bool) {
	loc := reEntriesKey.FindStringIndex(text)
	if loc == nil {
		return nil, false
	}
	start := loc[1] - 1 // position of the opening '['

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				arr := StripTrailingCommas(text[start : i+1])
				var check []map[string]any
				if err := json.Unmarshal([]byte(arr), &check); err != nil {
					return nil, false
				}
				return json.RawMessage(arr), true
			}
		}
	}
	return nil, false
}
