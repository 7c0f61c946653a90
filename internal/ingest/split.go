package ingest

import (
	"encoding/csv"
	"strings"
)

// SplitTabular parses pasted tabular text (a spreadsheet copy, a CSV
// export) into loose rows keyed by the header line. The delimiter is
// sniffed from the header: tab wins when present, then semicolon, then
// comma. Rows with no non-empty cell are dropped.
func SplitTabular(text string) []map[string]any {
	lines := nonEmptyLines(text)
	if len(lines) < 2 {
		return nil
	}

	delim := sniffDelimiter(lines[0])
	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil || len(records) < 2 {
		return nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	var rows []map[string]any
	for _, record := range records[1:] {
		row := map[string]any{}
		empty := true
		for i, cell := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				empty = false
			}
			row[header[i]] = cell
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func sniffDelimiter(header string) rune {
	switch {
	case strings.Contains(header, "\t"):
		return '\t'
	case strings.Contains(header, ";"):
		return ';'
	default:
		return ','
	}
}
