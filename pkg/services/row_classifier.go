// Package services implements the conversational data engine: session
// storage, sampling, intent detection, prompt construction, reply parsing,
// patch application, and the chat orchestration that ties them together.
package services

import (
	"sort"

	"github.com/tably-ai/tably-engine/pkg/models"
)

// ClassifyMissingRows scans the table and returns the ordered indices of
// rows containing at least one missing value, plus the sorted names of
// columns with at least one missing value anywhere in the table.
// When columns is empty, the columns of the first row are used.
// A value is missing if it is null, absent, or an empty string.
func ClassifyMissingRows(rows []models.Row, columns []string) ([]int, []string) {
	if len(rows) == 0 {
		return nil, nil
	}
	if len(columns) == 0 {
		columns = defaultColumns(rows[0])
	}

	var rowIndices []int
	missingCols := make(map[string]bool)

	for i, row := range rows {
		hasMissing := false
		for _, col := range columns {
			v, ok := row[col]
			if models.IsMissing(v, ok) {
				hasMissing = true
				missingCols[col] = true
			}
		}
		if hasMissing {
			rowIndices = append(rowIndices, i)
		}
	}

	cols := make([]string, 0, len(missingCols))
	for col := range missingCols {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	return rowIndices, cols
}

// ComputeStats derives the per-session statistics cached at creation:
// total row count and, for each column with at least one missing value,
// the number of missing occurrences. O(rows x columns), computed once per
// session rather than per query.
func ComputeStats(rows []models.Row, columns []string) models.DataStats {
	stats := models.DataStats{
		RowCount:   len(rows),
		NullCounts: make(map[string]int),
	}
	if len(rows) == 0 {
		return stats
	}
	if len(columns) == 0 {
		columns = defaultColumns(rows[0])
	}

	for _, row := range rows {
		for _, col := range columns {
			v, ok := row[col]
			if models.IsMissing(v, ok) {
				stats.NullCounts[col]++
			}
		}
	}

	return stats
}

// defaultColumns returns the keys of the row in sorted order, so callers
// that omit an explicit column list still get deterministic scans.
func defaultColumns(row models.Row) []string {
	cols := make([]string, 0, len(row))
	for k := range row {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
