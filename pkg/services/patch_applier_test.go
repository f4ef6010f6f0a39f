package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tably-ai/tably-engine/pkg/models"
)

func TestApplyPatch_ShallowMerge(t *testing.T) {
	rows := []models.Row{{"a": 1.0, "b": 2.0}}
	patch := []models.PatchEntry{{models.RowIndexKey: 0.0, "b": 9.0}}

	out := ApplyPatch(rows, patch)

	require.Len(t, out, 1)
	// Key "a" survives untouched; only given keys merge.
	assert.Equal(t, models.Row{"a": 1.0, "b": 9.0}, out[0])
}

func TestApplyPatch_RowIdentity(t *testing.T) {
	rows := []models.Row{
		{"v": "zero"},
		{"v": "one"},
		{"v": "two"},
	}
	patch := []models.PatchEntry{{models.RowIndexKey: 1.0, "v": "ONE"}}

	out := ApplyPatch(rows, patch)

	// Length never changes and unreferenced rows are the same objects.
	require.Len(t, out, len(rows))
	assert.Equal(t, models.Row{"v": "zero"}, out[0])
	assert.Equal(t, models.Row{"v": "ONE"}, out[1])
	assert.Equal(t, models.Row{"v": "two"}, out[2])

	// The input table is never mutated (copy-on-write).
	assert.Equal(t, models.Row{"v": "one"}, rows[1])
}

func TestApplyPatch_SkipsInvalidEntries(t *testing.T) {
	rows := []models.Row{{"v": 1.0}, {"v": 2.0}}
	patch := []models.PatchEntry{
		{"v": 99.0},                           // missing index
		{models.RowIndexKey: 7.0, "v": 99.0},  // out of bounds
		{models.RowIndexKey: -1.0, "v": 99.0}, // negative
		{models.RowIndexKey: "x", "v": 99.0},  // malformed
		{models.RowIndexKey: 1.0, "v": 42.0},  // valid
	}

	out := ApplyPatch(rows, patch)

	// Valid entries apply; the rest are dropped silently.
	assert.Equal(t, models.Row{"v": 1.0}, out[0])
	assert.Equal(t, models.Row{"v": 42.0}, out[1])
}

func TestApplyPatch_ReservedKeyNotWritten(t *testing.T) {
	rows := []models.Row{{"v": 1.0}}
	patch := []models.PatchEntry{{models.RowIndexKey: 0.0, "v": 2.0}}

	out := ApplyPatch(rows, patch)

	_, has := out[0][models.RowIndexKey]
	assert.False(t, has)
}

func TestApplyPatch_AddsNewColumns(t *testing.T) {
	rows := []models.Row{{"a": 1.0}}
	patch := []models.PatchEntry{{models.RowIndexKey: 0.0, "b": "new"}}

	out := ApplyPatch(rows, patch)

	assert.Equal(t, models.Row{"a": 1.0, "b": "new"}, out[0])
}

func TestApplyPatch_RepeatedEntriesAccumulate(t *testing.T) {
	rows := []models.Row{{"a": 1.0, "b": 1.0}}
	patch := []models.PatchEntry{
		{models.RowIndexKey: 0.0, "a": 2.0},
		{models.RowIndexKey: 0.0, "b": 3.0},
	}

	out := ApplyPatch(rows, patch)

	assert.Equal(t, models.Row{"a": 2.0, "b": 3.0}, out[0])
}

func TestApplyPatch_EmptyPatch(t *testing.T) {
	rows := []models.Row{{"v": 1.0}}

	out := ApplyPatch(rows, nil)

	require.Len(t, out, 1)
	assert.Equal(t, rows[0], out[0])
}

func TestCountPatchedRows(t *testing.T) {
	patch := []models.PatchEntry{
		{models.RowIndexKey: 0.0},
		{models.RowIndexKey: 5.0},
		{"no": "index"},
	}

	assert.Equal(t, 1, CountPatchedRows(patch, 3))
	assert.Equal(t, 2, CountPatchedRows(patch, 10))
}
