package utils

import "strings"

// Truncate shortens s to at most maxLen bytes, appending "..." when cut.
// Newlines are flattened to spaces so previews stay on one log line.
func Truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
