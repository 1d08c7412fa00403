// Package domain holds the value types shared by the notification pipeline:
// watchlist entries, fetched items and the persisted per-company history.
package domain

import (
	"strings"
	"time"
)

// DateLayout is the "YYYY.MM.DD HH:MM" layout used by the news source and the
// persisted document.
const DateLayout = "2006.01.02 15:04"

// KST is the fixed UTC+9 zone used for every window and day-boundary computation.
var KST = time.FixedZone("KST", 9*60*60)

// Item is a single news article or disclosure.
//
// URL is the de-duplication key. For disclosures it holds the receipt number.
// Date is only set for news; disclosures are date-scoped by the fetch call.
type Item struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  string `json:"date,omitempty"`
}

// Time parses Date in loc. ok is false when the date is absent or malformed.
func (it Item) Time(loc *time.Location) (time.Time, bool) {
	raw := strings.TrimSpace(it.Date)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = KST
	}
	t, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Titles returns the titles of items in order.
func Titles(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

// CountItems sums the lengths of all per-company sequences.
func CountItems(m map[string][]Item) int {
	n := 0
	for _, v := range m {
		n += len(v)
	}
	return n
}
