// Package models defines the core data types shared across the engine:
// tables, sessions, patch entries, and API payloads.
package models

import (
	"time"

	"github.com/tably-ai/tably-engine/pkg/jsonutil"
)

// RowIndexKey is the reserved key carrying a row's original position in the
// authoritative table. It is injected into every sampled row sent to the
// model and read back from patch entries, so its exact spelling is part of
// the wire contract with the LLM.
const RowIndexKey = "_row_index"

// Row is a single table row: column name to scalar value. Values are
// whatever encoding/json produces for scalars (string, float64, bool, nil).
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsMissing reports whether a cell value counts as missing. Null, absent,
// and empty string are equivalent for classification purposes.
func IsMissing(v any, present bool) bool {
	if !present || v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// DataStats holds per-session statistics computed once at session creation.
type DataStats struct {
	RowCount   int            `json:"row_count"`
	NullCounts map[string]int `json:"null_counts"`
}

// Session binds an opaque identifier to one authoritative table plus
// metadata. The Rows slice is replaced as a unit on patch commit, never
// mutated in place, so a snapshot taken under the store lock is always
// internally consistent.
type Session struct {
	ID           string
	Name         string
	Columns      []string
	Rows         []Row
	Stats        DataStats
	CreatedAt    time.Time
	LastAccessed time.Time
}

// PatchEntry is a sparse row update produced by the model: the reserved
// row-index key plus column-name/new-value pairs to merge into that row.
type PatchEntry map[string]any

// RowIndex extracts the target row index from the entry. LLMs emit the
// index as a JSON number or, occasionally, a quoted string; both are
// accepted. Returns false if the key is absent or not coercible.
func (p PatchEntry) RowIndex() (int, bool) {
	raw, ok := p[RowIndexKey]
	if !ok {
		return 0, false
	}
	return jsonutil.FlexibleInt(raw)
}

// Intent is the coarse classification of a user request.
type Intent string

const (
	// IntentCleaning indicates the user wants data modified (fills,
	// replacements, format fixes). Drives context sampling and the
	// patch-emitting prompt.
	IntentCleaning Intent = "cleaning"
	// IntentAnalysis indicates a read-only question about the data.
	IntentAnalysis Intent = "analysis"
)

// ParsedReply is the result of parsing an LLM reply: prose, optionally
// accompanied by a patch set. HasPatch distinguishes "no block" and
// "empty/unusable block" from a real patch so callers cannot conflate them.
type ParsedReply struct {
	Message  string
	Patch    []PatchEntry
	HasPatch bool
}
