package constants

import "strings"

// Status is the canonical consumption status for tracked entries.
type Status string

// Stable values (store these exact strings in DB).
const (
	StatusPlanned    Status = "Planned"     // on the list, not started
	StatusInProgress Status = "In Progress" // currently watching/reading/playing
	StatusCompleted  Status = "Completed"   // finished
	StatusDropped    Status = "Dropped"     // abandoned
	StatusOnHold     Status = "On Hold"     // paused, intend to resume
)

var allStatuses = []Status{
	StatusPlanned,
	StatusInProgress,
	StatusCompleted,
	StatusDropped,
	StatusOnHold,
}

// StatusesAsStringSlice returns all status labels for prompt enums.
func StatusesAsStringSlice() []string {
	result := make([]string, len(allStatuses))
	for i, s := range allStatuses {
		result[i] = string(s)
	}
	return result
}

// CanonicalizeStatus maps free-form status labels onto the canonical enum.
// Returns false when the label is unknown.
func CanonicalizeStatus(input string) (Status, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]Status{
		"watching":    StatusInProgress,
		"reading":     StatusInProgress,
		"playing":     StatusInProgress,
		"listening":   StatusInProgress,
		"in-progress": StatusInProgress,
		"inprogress":  StatusInProgress,
		"started":     StatusInProgress,
		"done":        StatusCompleted,
		"finished":    StatusCompleted,
		"watched":     StatusCompleted,
		"complete":    StatusCompleted,
		"plan":        StatusPlanned,
		"planning":    StatusPlanned,
		"wishlist":    StatusPlanned,
		"to watch":    StatusPlanned,
		"backlog":     StatusPlanned,
		"abandoned":   StatusDropped,
		"quit":        StatusDropped,
		"paused":      StatusOnHold,
		"hold":        StatusOnHold,
		"on-hold":     StatusOnHold,
	}
	if s, ok := synonyms[normalized]; ok {
		return s, true
	}

	for _, s := range allStatuses {
		if strings.EqualFold(string(s), normalized) ||
			strings.EqualFold(strings.ReplaceAll(string(s), " ", ""), strings.ReplaceAll(normalized, " ", "")) {
			return s, true
		}
	}
	return "", false
}
