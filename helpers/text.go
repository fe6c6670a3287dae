package helpers

import "strings"

// CleanCellText trims surrounding whitespace and replaces embedded
// newlines with underscores, matching how cell values are stored.
func CleanCellText(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "_")
}

// Truncate shortens s to at most n runes for log output
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
