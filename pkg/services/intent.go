package services

import (
	"strings"

	"github.com/tably-ai/tably-engine/pkg/models"
)

// cleaningKeywords are the substrings that mark a request as a mutation.
// A heuristic, not a guarantee: a false classification only changes the
// sampling strategy and prompt wording, never what the engine will commit.
var cleaningKeywords = []string{
	"clean", "null", "missing", "empty", "fill", "replace", "fix",
	"update", "modify", "change", "remove", "delete", "transform",
	"convert", "format", "standardize", "normalize",
}

// DetectIntent classifies a free-text message as cleaning or analysis via
// case-insensitive substring matching against a fixed keyword list.
func DetectIntent(message string) models.Intent {
	lower := strings.ToLower(message)
	for _, kw := range cleaningKeywords {
		if strings.Contains(lower, kw) {
			return models.IntentCleaning
		}
	}
	return models.IntentAnalysis
}
