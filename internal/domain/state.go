package domain

import (
	"bytes"
	"encoding/json"
)

// History maps a company name to its ordered (oldest first) list of items.
type History map[string][]Item

// Clone deep-copies the history so callers can mutate the result freely.
func (h History) Clone() History {
	out := make(History, len(h))
	for k, v := range h {
		out[k] = append([]Item(nil), v...)
	}
	return out
}

// State is the persisted document: every item already announced, per company.
type State struct {
	News    History `json:"printed_news"`
	Reports History `json:"printed_reports"`
}

// EmptyState returns a state with both maps allocated.
func EmptyState() State {
	return State{News: History{}, Reports: History{}}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	return State{News: s.News.Clone(), Reports: s.Reports.Clone()}
}

// normalize allocates nil maps and strips dates from disclosures, which are
// never written with one.
func (s *State) normalize() {
	if s.News == nil {
		s.News = History{}
	}
	if s.Reports == nil {
		s.Reports = History{}
	}
	for company, items := range s.Reports {
		for i := range items {
			items[i].Date = ""
		}
		s.Reports[company] = items
	}
}

// DecodeState parses a persisted document. Missing sections decode as empty.
func DecodeState(b []byte) (State, error) {
	var s State
	if len(bytes.TrimSpace(b)) == 0 {
		return EmptyState(), nil
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return EmptyState(), err
	}
	s.normalize()
	return s, nil
}
