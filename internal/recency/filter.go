// Package recency selects items by publication time.
//
// Every filter fails closed: an item whose date cannot be parsed is dropped.
package recency

import (
	"time"

	"folionotify/internal/domain"
)

// FilterSince keeps items published at or after since. Dates are parsed in
// since's location. There is no upper bound; future-dated items pass.
func FilterSince(items []domain.Item, since time.Time) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		t, ok := it.Time(since.Location())
		if !ok {
			continue
		}
		if !t.Before(since) {
			out = append(out, it)
		}
	}
	return out
}

// FilterRecent keeps items with now-window <= t.
func FilterRecent(items []domain.Item, window time.Duration, now time.Time) []domain.Item {
	return FilterSince(items, now.Add(-window))
}

// FilterPreviousDay keeps items whose calendar date, in now's location,
// is the day before now.
func FilterPreviousDay(items []domain.Item, now time.Time) []domain.Item {
	y, m, d := now.AddDate(0, 0, -1).Date()
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		t, ok := it.Time(now.Location())
		if !ok {
			continue
		}
		ty, tm, td := t.Date()
		if ty == y && tm == m && td == d {
			out = append(out, it)
		}
	}
	return out
}
