package textutil

import (
	"strings"
)

// lineBreakReplacer folds CRLF and bare CR line endings into LF.
var lineBreakReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// SplitLines splits raw text on any line boundary. The result keeps blank
// lines and surrounding white space.
func SplitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(lineBreakReplacer.Replace(raw), "\n")
}

// NormalizeQueries turns raw extracted text into ordered query lines:
// each line is trimmed and lines left empty are dropped.
func NormalizeQueries(raw string) []string {
	return NormalizeLines(SplitLines(raw))
}

// NormalizeLines applies the query rules to an already split slice. Entries
// that themselves contain line breaks are split first. The result is never
// nil.
func NormalizeLines(lines []string) []string {
	queries := make([]string, 0, len(lines))
	for _, line := range lines {
		for _, part := range SplitLines(line) {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			queries = append(queries, trimmed)
		}
	}
	return queries
}
