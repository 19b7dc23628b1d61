// internal/llmutil/parser.go
package llmutil

import (
	"regexp"
	"strings"
)

// codeBlockRegex matches the first fenced block. The opening fence may carry a
// language tag (java, kotlin, c++, ...) and must end its line.
// Backticks are written as \x60 because Go raw strings cannot contain them.
var codeBlockRegex = regexp.MustCompile("(?s)\x60\x60\x60[\\w+#.-]*[^\\S\\r\\n]*\\r?\\n(.*?)\x60\x60\x60")

// ExtractCode returns the trimmed interior of the first fenced code block in
// text. Text without a fenced block is returned unchanged.
func ExtractCode(text string) string {
	matches := codeBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return text
}

// Truncate shortens s to maxLen bytes for logging, marking the cut with "...".
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	// Does not account for rune boundaries; only used for log output.
	return s[:maxLen] + "..."
}
