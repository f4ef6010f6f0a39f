package logging

const (
	// MaxMessageLogLength is the maximum length of a user message to log.
	MaxMessageLogLength = 120
	// MaxReplyLogLength is the maximum length of a model reply to log.
	MaxReplyLogLength = 200
)

// SanitizeMessage truncates a user message for logging. User messages can
// quote dataset cell values, so they are only ever logged truncated and at
// debug level.
func SanitizeMessage(message string) string {
	return TruncateString(message, MaxMessageLogLength)
}

// SanitizeReply truncates a model reply for logging. Replies may embed a
// full patch block containing dataset values.
func SanitizeReply(reply string) string {
	return TruncateString(reply, MaxReplyLogLength)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
