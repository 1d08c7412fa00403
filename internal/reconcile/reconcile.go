// Package reconcile merges freshly fetched items into a company's persisted
// history. The merge is append-only: nothing accepted earlier is ever dropped.
package reconcile

import (
	"strings"

	"folionotify/internal/dedup"
	"folionotify/internal/domain"
)

// DuplicateFunc reports whether title is a near-duplicate of one of prior.
// A nil DuplicateFunc disables title scoring (URL uniqueness only).
type DuplicateFunc func(title string, prior []string) bool

// NewsDuplicate adapts a dedup policy for the news path.
func NewsDuplicate(p dedup.Policy) DuplicateFunc {
	return p.IsDuplicate
}

type Result struct {
	Company string
	Merged  []domain.Item
	New     []domain.Item
	Changed bool
}

// Reconcile appends every fresh item that is not already known to prior.
//
// An item is skipped when its URL is empty, when its URL was already seen
// (in prior or earlier in fresh), or when dup flags its title against the
// titles in prior plus the ones admitted so far. Input order is kept.
func Reconcile(company string, prior, fresh []domain.Item, dup DuplicateFunc) Result {
	merged := make([]domain.Item, len(prior), len(prior)+len(fresh))
	copy(merged, prior)

	seen := make(map[string]struct{}, len(merged)+len(fresh))
	for _, it := range merged {
		seen[it.URL] = struct{}{}
	}
	var titles []string
	if dup != nil {
		titles = domain.Titles(merged)
	}

	res := Result{Company: company}
	for _, it := range fresh {
		if strings.TrimSpace(it.URL) == "" {
			continue
		}
		if _, ok := seen[it.URL]; ok {
			continue
		}
		if dup != nil && dup(it.Title, titles) {
			continue
		}

		merged = append(merged, it)
		seen[it.URL] = struct{}{}
		if dup != nil {
			titles = append(titles, it.Title)
		}
		res.New = append(res.New, it)
		res.Changed = true
	}
	res.Merged = merged
	return res
}
