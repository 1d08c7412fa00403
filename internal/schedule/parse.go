package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WindowSpec is the config-file form of a Window.
//
//	{ "name": "morning-digest", "at": "08:00", "buffer": "5m",
//	  "action": "digest_recent", "lookback": "15h" }
type WindowSpec struct {
	Name     string `json:"name,omitempty"`
	At       string `json:"at"`
	Buffer   string `json:"buffer,omitempty"`
	Action   string `json:"action"`
	Lookback string `json:"lookback,omitempty"`
}

const defaultBuffer = 5 * time.Minute

// ParseWindows converts config specs, keeping their order (priority).
func ParseWindows(specs []WindowSpec) ([]Window, error) {
	out := make([]Window, 0, len(specs))
	for i, s := range specs {
		w, err := ParseWindow(s)
		if err != nil {
			return nil, fmt.Errorf("schedule.windows[%d]: %w", i, err)
		}
		out = append(out, w)
	}
	return out, nil
}

func ParseWindow(s WindowSpec) (Window, error) {
	h, m, err := parseHHMM(s.At)
	if err != nil {
		return Window{}, err
	}

	buf := defaultBuffer
	if raw := strings.TrimSpace(s.Buffer); raw != "" {
		buf, err = time.ParseDuration(raw)
		if err != nil {
			return Window{}, fmt.Errorf("invalid buffer %q: %w", s.Buffer, err)
		}
		if buf < 0 {
			return Window{}, fmt.Errorf("buffer must be >= 0")
		}
	}

	act := Action{Kind: ActionKind(strings.ToLower(strings.TrimSpace(s.Action)))}
	switch act.Kind {
	case ActionReset, ActionDigestPreviousDay:
	case ActionDigestRecent:
		act.Lookback, err = time.ParseDuration(strings.TrimSpace(s.Lookback))
		if err != nil || act.Lookback <= 0 {
			return Window{}, fmt.Errorf("digest_recent needs a positive lookback, got %q", s.Lookback)
		}
	default:
		return Window{}, fmt.Errorf("unknown action %q", s.Action)
	}

	name := strings.TrimSpace(s.Name)
	if name == "" {
		name = fmt.Sprintf("%s@%02d:%02d", act.Kind, h, m)
	}
	return Window{Name: name, Hour: h, Minute: m, Buffer: buf, Action: act}, nil
}

func parseHHMM(s string) (hour int, minute int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}
