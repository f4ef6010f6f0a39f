package services

import (
	"sort"

	"github.com/tably-ai/tably-engine/pkg/models"
)

// DefaultContextRadius is how many rows of surrounding context each anchor
// row carries into the sample.
const DefaultContextRadius = 20

// DefaultSampleSize is the target size of a representative sample.
const DefaultSampleSize = 200

// DefaultRepresentativeThreshold is the row count above which analysis
// queries see a stride sample instead of the full table.
const DefaultRepresentativeThreshold = 1000

// SampleContext returns the rows within radius of each anchor index,
// deduplicated and sorted ascending. Every anchor is guaranteed to appear.
// Each returned row is a copy augmented with its original index under
// models.RowIndexKey. Deterministic for identical inputs.
func SampleContext(rows []models.Row, anchors []int, radius int) []models.Row {
	if len(rows) == 0 || len(anchors) == 0 {
		return nil
	}

	include := make(map[int]bool)
	for _, anchor := range anchors {
		lo := anchor - radius
		if lo < 0 {
			lo = 0
		}
		hi := anchor + radius
		if hi > len(rows)-1 {
			hi = len(rows) - 1
		}
		for i := lo; i <= hi; i++ {
			include[i] = true
		}
	}

	indices := make([]int, 0, len(include))
	for i := range include {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	out := make([]models.Row, 0, len(indices))
	for _, i := range indices {
		out = append(out, withRowIndex(rows[i], i))
	}
	return out
}

// SampleRepresentative returns up to size rows taken at a fixed stride
// starting from index 0, giving even coverage across the table at
// predictable token cost. Localized anomalies between strides are missed;
// that tradeoff is accepted. Each returned row is a copy augmented with its
// original index under models.RowIndexKey. Deterministic: no randomness,
// strictly increasing indices, no duplicates.
func SampleRepresentative(rows []models.Row, size int) []models.Row {
	if len(rows) == 0 || size <= 0 {
		return nil
	}

	stride := len(rows) / size
	if stride < 1 {
		stride = 1
	}

	out := make([]models.Row, 0, size)
	for i := 0; i < len(rows) && len(out) < size; i += stride {
		out = append(out, withRowIndex(rows[i], i))
	}
	return out
}

// SampleForAnalysis passes small tables through whole and stride-samples
// large ones. Rows always carry models.RowIndexKey either way, so a patch
// round-trip stays possible regardless of table size. The second return
// value reports whether sampling occurred.
func SampleForAnalysis(rows []models.Row, threshold, size int) ([]models.Row, bool) {
	if len(rows) > threshold {
		return SampleRepresentative(rows, size), true
	}
	out := make([]models.Row, 0, len(rows))
	for i, row := range rows {
		out = append(out, withRowIndex(row, i))
	}
	return out, false
}

func withRowIndex(row models.Row, index int) models.Row {
	out := row.Clone()
	out[models.RowIndexKey] = index
	return out
}
