package services

import (
	"github.com/tably-ai/tably-engine/pkg/models"
)

// ApplyPatch merges a patch set into a table copy-on-write and returns the
// new row slice; the input slice and its rows are never mutated.
//
// Each entry with a valid in-bounds row index is shallow-merged into a
// clone of its target row: given keys overwrite, absent keys survive. The
// reserved row-index key itself is never written into the row. Entries
// with a missing, malformed, or out-of-bounds index are dropped silently:
// the model's indices can drift after earlier edits in the same turn, and
// a few bad entries should not discard an otherwise-valid batch. The
// result always has the same length as the input, and unpatched rows are
// the same objects as before.
func ApplyPatch(rows []models.Row, entries []models.PatchEntry) []models.Row {
	out := make([]models.Row, len(rows))
	copy(out, rows)

	for _, entry := range entries {
		idx, ok := entry.RowIndex()
		if !ok || idx < 0 || idx >= len(rows) {
			continue
		}

		// Merge onto out rather than rows so repeated entries for the
		// same index accumulate.
		merged := out[idx].Clone()
		for k, v := range entry {
			if k == models.RowIndexKey {
				continue
			}
			merged[k] = v
		}
		out[idx] = merged
	}

	return out
}

// CountPatchedRows reports how many entries of the patch set would apply
// to a table of the given length. Used for metrics and response logging.
func CountPatchedRows(entries []models.PatchEntry, tableLen int) int {
	n := 0
	for _, entry := range entries {
		if idx, ok := entry.RowIndex(); ok && idx >= 0 && idx < tableLen {
			n++
		}
	}
	return n
}
