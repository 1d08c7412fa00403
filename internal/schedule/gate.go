// Package schedule maps the current local time onto named daily windows.
//
// The pipeline itself runs on every invocation; only the extra actions
// (daily reset, digests) are gated here. The caller is expected to be
// invoked often enough (every few minutes) to land inside each window's
// buffer at least once. A longer gap silently skips that window.
package schedule

import (
	"fmt"
	"time"
)

type ActionKind string

const (
	ActionReset             ActionKind = "reset"
	ActionDigestRecent      ActionKind = "digest_recent"
	ActionDigestPreviousDay ActionKind = "digest_previous_day"
)

// Action is what a matched window triggers. Lookback is only meaningful for
// ActionDigestRecent.
type Action struct {
	Kind     ActionKind
	Lookback time.Duration
}

func (a Action) String() string {
	if a.Kind == ActionDigestRecent {
		return fmt.Sprintf("%s(%s)", a.Kind, a.Lookback)
	}
	return string(a.Kind)
}

// Window matches [today HH:MM, today HH:MM + Buffer], both ends inclusive.
type Window struct {
	Name   string
	Hour   int
	Minute int
	Buffer time.Duration
	Action Action
}

// Contains reports whether now falls inside the window on now's calendar day,
// in now's location.
func (w Window) Contains(now time.Time) bool {
	y, m, d := now.Date()
	start := time.Date(y, m, d, w.Hour, w.Minute, 0, 0, now.Location())
	end := start.Add(w.Buffer)
	return !now.Before(start) && !now.After(end)
}

// Gate returns the first window, in the given priority order, containing now.
// At most one action fires per invocation.
func Gate(now time.Time, windows []Window) (Window, bool) {
	for _, w := range windows {
		if w.Contains(now) {
			return w, true
		}
	}
	return Window{}, false
}

// DefaultWindows is the stock daily plan: reset at midnight, then morning,
// midday and evening digests covering the hours since the previous one.
func DefaultWindows() []Window {
	return []Window{
		{Name: "reset", Hour: 0, Minute: 0, Buffer: 5 * time.Minute, Action: Action{Kind: ActionReset}},
		{Name: "morning-digest", Hour: 8, Minute: 0, Buffer: 5 * time.Minute, Action: Action{Kind: ActionDigestRecent, Lookback: 15 * time.Hour}},
		{Name: "midday-digest", Hour: 13, Minute: 0, Buffer: 5 * time.Minute, Action: Action{Kind: ActionDigestRecent, Lookback: 5 * time.Hour}},
		{Name: "evening-digest", Hour: 17, Minute: 0, Buffer: 5 * time.Minute, Action: Action{Kind: ActionDigestRecent, Lookback: 4 * time.Hour}},
	}
}
