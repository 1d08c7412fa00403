// Package dedup scores headline similarity by keyword overlap.
//
// It is a cheap heuristic: case-sensitive, no stemming, no normalization
// beyond splitting on whitespace, quotes and commas.
package dedup

import (
	"strings"
	"unicode"
)

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || r == '\'' || r == '"' || r == ','
}

// Keywords returns the set of tokens in title.
func Keywords(title string) map[string]struct{} {
	fields := strings.FieldsFunc(title, isDelimiter)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Score compares current against every prior title and returns the largest
// keyword overlap as a fraction of current's keyword count.
//
// score is 0 when prior is empty or current has no keywords.
func Score(current string, prior []string) (score float64, keywordCount int) {
	cur := Keywords(current)
	keywordCount = len(cur)
	if keywordCount == 0 || len(prior) == 0 {
		return 0, keywordCount
	}

	best := 0
	for _, p := range prior {
		n := 0
		for k := range Keywords(p) {
			if _, ok := cur[k]; ok {
				n++
			}
		}
		if n > best {
			best = n
		}
	}
	return float64(best) / float64(keywordCount), keywordCount
}
