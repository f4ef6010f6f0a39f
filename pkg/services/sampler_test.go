package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tably-ai/tably-engine/pkg/models"
)

func makeRows(n int) []models.Row {
	rows := make([]models.Row, n)
	for i := range rows {
		rows[i] = models.Row{"id": fmt.Sprintf("row-%d", i)}
	}
	return rows
}

func sampledIndices(t *testing.T, sample []models.Row) []int {
	t.Helper()
	out := make([]int, len(sample))
	for i, row := range sample {
		idx, ok := row[models.RowIndexKey].(int)
		require.True(t, ok, "sampled row missing %s", models.RowIndexKey)
		out[i] = idx
	}
	return out
}

func TestSampleContext_CoversAnchors(t *testing.T) {
	rows := makeRows(100)
	anchors := []int{5, 50, 95}

	sample := SampleContext(rows, anchors, 3)
	indices := sampledIndices(t, sample)

	// Every anchor appears, output sorted ascending, no duplicates.
	for _, anchor := range anchors {
		assert.Contains(t, indices, anchor)
	}
	for i := 1; i < len(indices); i++ {
		assert.Greater(t, indices[i], indices[i-1])
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7, 8, 47, 48, 49, 50, 51, 52, 53, 92, 93, 94, 95, 96, 97, 98, 99}, indices)
}

func TestSampleContext_OverlappingWindowsDedupe(t *testing.T) {
	rows := makeRows(10)

	sample := SampleContext(rows, []int{2, 4}, 2)
	indices := sampledIndices(t, sample)

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, indices)
}

func TestSampleContext_ClipsToBounds(t *testing.T) {
	rows := makeRows(5)

	sample := SampleContext(rows, []int{0, 4}, 20)
	indices := sampledIndices(t, sample)

	assert.Equal(t, []int{0, 1, 2, 3, 4}, indices)
}

func TestSampleContext_NoAnchors(t *testing.T) {
	assert.Nil(t, SampleContext(makeRows(5), nil, 20))
}

func TestSampleContext_DoesNotMutateInput(t *testing.T) {
	rows := makeRows(3)

	_ = SampleContext(rows, []int{1}, 1)

	for _, row := range rows {
		_, has := row[models.RowIndexKey]
		assert.False(t, has, "original row gained the reserved key")
	}
}

func TestSampleRepresentative_StrideAndSize(t *testing.T) {
	rows := makeRows(1000)

	sample := SampleRepresentative(rows, 200)
	indices := sampledIndices(t, sample)

	require.Len(t, sample, 200)
	assert.Equal(t, 0, indices[0])
	// stride = 1000/200 = 5
	assert.Equal(t, 5, indices[1])
	assert.Equal(t, 995, indices[199])
}

func TestSampleRepresentative_SmallTable(t *testing.T) {
	rows := makeRows(7)

	sample := SampleRepresentative(rows, 200)
	indices := sampledIndices(t, sample)

	// stride clamps to 1; no duplicates even when size exceeds rows.
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, indices)
}

func TestSampleRepresentative_Deterministic(t *testing.T) {
	rows := makeRows(1234)

	first := SampleRepresentative(rows, 200)
	second := SampleRepresentative(rows, 200)

	assert.Equal(t, first, second)
}

func TestSampleRepresentative_NoDuplicateIndices(t *testing.T) {
	// Sizes around stride boundaries used to double-count the first row;
	// the contract is strictly increasing indices.
	for _, n := range []int{199, 200, 201, 399, 401, 1001} {
		rows := makeRows(n)
		indices := sampledIndices(t, SampleRepresentative(rows, 200))
		seen := make(map[int]bool)
		for _, idx := range indices {
			assert.False(t, seen[idx], "duplicate index %d for table size %d", idx, n)
			seen[idx] = true
		}
	}
}

func TestSampleForAnalysis_PassThroughBelowThreshold(t *testing.T) {
	rows := makeRows(50)

	sample, sampled := SampleForAnalysis(rows, 1000, 200)

	assert.False(t, sampled)
	require.Len(t, sample, 50)
	// Pass-through rows still carry the reserved index key.
	assert.Equal(t, 0, sample[0][models.RowIndexKey])
	assert.Equal(t, 49, sample[49][models.RowIndexKey])
}

func TestSampleForAnalysis_SamplesAboveThreshold(t *testing.T) {
	rows := makeRows(1500)

	sample, sampled := SampleForAnalysis(rows, 1000, 200)

	assert.True(t, sampled)
	assert.Len(t, sample, 200)
}
