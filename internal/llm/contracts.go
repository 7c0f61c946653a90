package llm

import "context"

// CleanRequest carries one blob of user-pasted tabular text to the model.
type CleanRequest struct {
	RawText string

	// DefaultMedium is an optional hint applied when a row has no medium
	// column (e.g. the user pasted a pure movie list).
	DefaultMedium string
}

// RawBatch is the model's output after decode and repair: loosely-typed
// rows plus per-row failure strings. Entries is always non-nil.
type RawBatch struct {
	Entries []map[string]any `json:"entries"`
	Errors  []string         `json:"errors"`
}

// RowCleaner is the interface the import pipeline depends on.
type RowCleaner interface {
	// CleanRows sends the pasted text to the model and returns the
	// repaired batch along with the raw response body for diagnostics.
	CleanRows(ctx context.Context, req CleanRequest) (RawBatch, []byte, error)
}
