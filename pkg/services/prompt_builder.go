package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tably-ai/tably-engine/pkg/models"
)

// System directives for the two intents. The cleaning directive defines the
// machine-parseable patch protocol; its marker strings and the reserved
// row-index key are load-bearing and must match the parser exactly.
const (
	cleaningSystemPrompt = `You are a data cleaning assistant. The user will show you a sample of ` +
		`their dataset and describe a fix they want. Respond in two parts:

1. A short prose explanation of what you changed and why.
2. The modified rows, enclosed between the literal markers ` + PatchOpenMarker + ` and ` + PatchCloseMarker + `.

Inside the markers, emit a JSON array of objects. Include ONLY rows you
modified. Each object must keep the "` + models.RowIndexKey + `" value of the row it
modifies, plus the columns you changed with their new values. Do not
include unchanged columns or unchanged rows. Emit nothing else inside the
markers.`

	analysisSystemPrompt = `You are a data analysis assistant. The user will show you a sample of ` +
		`their dataset and ask a question about it. Answer with clear prose
insights. Do not propose modifications and do not emit any machine-readable
blocks.`
)

// PromptInput is everything the prompt builder needs for one turn.
type PromptInput struct {
	Session    *models.Session
	Intent     models.Intent
	Sample     []models.Row
	SampleNote string
	Message    string
}

// BuildPrompt assembles the two-part instruction payload for one turn.
// The user content never contains more rows than the sampler produced and
// never truncates the user's message.
func BuildPrompt(in PromptInput) (system string, user string, err error) {
	switch in.Intent {
	case models.IntentCleaning:
		system = cleaningSystemPrompt
	case models.IntentAnalysis:
		system = analysisSystemPrompt
	default:
		return "", "", fmt.Errorf("unknown intent %q", in.Intent)
	}

	sampleJSON, err := json.Marshal(in.Sample)
	if err != nil {
		return "", "", fmt.Errorf("serialize sample rows: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %s\n", in.Session.Name)
	fmt.Fprintf(&b, "Total rows: %d, columns: %d\n", in.Session.Stats.RowCount, len(in.Session.Columns))
	fmt.Fprintf(&b, "Column names: %s\n\n", strings.Join(in.Session.Columns, ", "))
	fmt.Fprintf(&b, "%s\n\n", in.SampleNote)
	fmt.Fprintf(&b, "Sample rows (each carries its original index as %q):\n%s\n\n", models.RowIndexKey, sampleJSON)
	fmt.Fprintf(&b, "User request: %s", in.Message)

	return system, b.String(), nil
}

// BuildSampleNote describes how the sample was constructed, so the model
// understands what it is and is not seeing.
func BuildSampleNote(intent models.Intent, anchorCount, totalRows, sampleCount int, sampled bool) string {
	if intent == models.IntentCleaning {
		if anchorCount == 0 {
			return "No missing values were found in the dataset; the sample below is a preview."
		}
		return fmt.Sprintf(
			"A full scan found %d rows with missing values out of %d total; the sample below contains those rows and their surrounding context.",
			anchorCount, totalRows)
	}
	if sampled {
		return fmt.Sprintf("This is a stride-sampled preview of %d of %d rows.", sampleCount, totalRows)
	}
	return fmt.Sprintf("The full table of %d rows is shown.", totalRows)
}
