package digest

import (
	"folionotify/internal/dedup"
	"folionotify/internal/domain"
)

// Distinct keeps items in order, dropping any whose title overlaps an already
// kept title with a score at or above threshold. A title sharing no keyword
// with the kept ones is never dropped, so a zero threshold still keeps the
// first item. Unlike the incremental pipeline there is no minimum keyword
// count and no persisted history.
func Distinct(items []domain.Item, threshold float64) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if score, _ := dedup.Score(it.Title, kept); score > 0 && score >= threshold {
			continue
		}
		out = append(out, it)
		kept = append(kept, it.Title)
	}
	return out
}
