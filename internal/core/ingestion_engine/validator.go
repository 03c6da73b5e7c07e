package ingestion_engine

import "strings"

// IsValidContent reports whether extracted text is worth sending through the
// pipeline: non-empty after trimming and under maxLen characters. Documents
// failing this check are dropped before any embedding work happens.
func IsValidContent(content string, maxLen int) bool {
	trimmed := strings.TrimSpace(content)
	return len(trimmed) > 0 && len(trimmed) < maxLen
}
