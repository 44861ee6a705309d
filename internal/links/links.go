// Package links extracts URLs from meeting chat transcripts.
package links

import "regexp"

// urlPattern matches http/https URLs: the scheme prefix followed by a greedy
// run of non-whitespace. Matching is case-sensitive.
var urlPattern = regexp.MustCompile(`https?://\S+`)

// Extract returns every URL in text, non-overlapping, in order of first
// appearance. Duplicates are kept. A text with no URLs yields an empty slice.
func Extract(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}
