package services

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tably-ai/tably-engine/pkg/models"
)

// Sentinel markers bracketing a machine-parseable patch block inside an
// otherwise free-text model reply. Part of the wire contract; reproduced
// byte-for-byte in the cleaning directive.
const (
	PatchOpenMarker  = "[DATA_UPDATE]"
	PatchCloseMarker = "[/DATA_UPDATE]"
)

// MalformedPatchMessage replaces the reply when a patch block is present
// but cannot be decoded. The surrounding prose is discarded in this case
// only, since it describes an update that was never applied.
const MalformedPatchMessage = "I prepared a data update but it could not be processed. Please try rephrasing your request."

// patchBlockPattern matches the first sentinel-delimited block,
// non-greedily so trailing prose containing a stray marker is untouched.
var patchBlockPattern = regexp.MustCompile(
	regexp.QuoteMeta(PatchOpenMarker) + `(?s)(.*?)` + regexp.QuoteMeta(PatchCloseMarker))

// ParseReply extracts an optional patch set from an LLM reply.
//
// No markers: the reply is pure prose, returned verbatim with no patch.
// Markers with a decodable JSON array: the patch set, with the display
// message being the reply minus the block, trimmed. An empty array counts
// as no patch but still strips the block. Markers with undecodable
// content: no patch and a fixed fallback message.
//
// ParseReply never fails; a malformed block degrades, it does not error.
func ParseReply(reply string) models.ParsedReply {
	loc := patchBlockPattern.FindStringSubmatchIndex(reply)
	if loc == nil {
		return models.ParsedReply{Message: reply}
	}

	enclosed := strings.TrimSpace(reply[loc[2]:loc[3]])
	enclosed = stripCodeFence(enclosed)

	var entries []models.PatchEntry
	if err := json.Unmarshal([]byte(enclosed), &entries); err != nil {
		return models.ParsedReply{Message: MalformedPatchMessage}
	}

	message := strings.TrimSpace(reply[:loc[0]] + reply[loc[1]:])
	if len(entries) == 0 {
		return models.ParsedReply{Message: message}
	}

	return models.ParsedReply{
		Message:  message,
		Patch:    entries,
		HasPatch: true,
	}
}

// stripCodeFence removes a markdown code fence some models wrap around the
// JSON array despite instructions.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
