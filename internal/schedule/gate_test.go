package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var kst = time.FixedZone("KST", 9*60*60)

func clock(h, m, s int) time.Time {
	return time.Date(2024, 1, 1, h, m, s, 0, kst)
}

func TestGateResetWindowMatchesInsideBuffer(t *testing.T) {
	t.Parallel()

	windows := []Window{{Name: "reset", Hour: 0, Minute: 0, Buffer: 5 * time.Minute, Action: Action{Kind: ActionReset}}}

	w, ok := Gate(clock(0, 3, 0), windows)
	require.True(t, ok)
	require.Equal(t, ActionReset, w.Action.Kind)

	_, ok = Gate(clock(0, 6, 0), windows)
	require.False(t, ok)
}

func TestWindowBoundsAreInclusive(t *testing.T) {
	t.Parallel()

	w := Window{Hour: 8, Minute: 0, Buffer: 5 * time.Minute}
	require.True(t, w.Contains(clock(8, 0, 0)))
	require.True(t, w.Contains(clock(8, 5, 0)))
	require.False(t, w.Contains(clock(7, 59, 59)))
	require.False(t, w.Contains(clock(8, 5, 1)))
}

func TestGateFirstMatchWins(t *testing.T) {
	t.Parallel()

	windows := []Window{
		{Name: "first", Hour: 8, Buffer: 10 * time.Minute, Action: Action{Kind: ActionDigestPreviousDay}},
		{Name: "second", Hour: 8, Minute: 5, Buffer: 5 * time.Minute, Action: Action{Kind: ActionReset}},
	}
	w, ok := Gate(clock(8, 6, 0), windows)
	require.True(t, ok)
	require.Equal(t, "first", w.Name)
}

func TestDefaultWindows(t *testing.T) {
	t.Parallel()

	cases := map[time.Time]string{
		clock(0, 0, 0):   "reset",
		clock(8, 2, 0):   "morning-digest",
		clock(13, 5, 0):  "midday-digest",
		clock(17, 4, 59): "evening-digest",
	}
	for now, want := range cases {
		w, ok := Gate(now, DefaultWindows())
		require.True(t, ok, now)
		require.Equal(t, want, w.Name)
	}
	_, ok := Gate(clock(12, 0, 0), DefaultWindows())
	require.False(t, ok)
}

func TestParseWindow(t *testing.T) {
	t.Parallel()

	w, err := ParseWindow(WindowSpec{At: "08:00", Action: "digest_recent", Lookback: "15h"})
	require.NoError(t, err)
	require.Equal(t, 8, w.Hour)
	require.Equal(t, defaultBuffer, w.Buffer)
	require.Equal(t, 15*time.Hour, w.Action.Lookback)
	require.Equal(t, "digest_recent@08:00", w.Name)

	w, err = ParseWindow(WindowSpec{Name: "r", At: "00:00", Buffer: "10m", Action: "RESET"})
	require.NoError(t, err)
	require.Equal(t, 10*time.Minute, w.Buffer)
	require.Equal(t, ActionReset, w.Action.Kind)

	bad := []WindowSpec{
		{At: "24:00", Action: "reset"},
		{At: "8", Action: "reset"},
		{At: "08:00", Action: "explode"},
		{At: "08:00", Action: "digest_recent"},
		{At: "08:00", Buffer: "-1m", Action: "reset"},
	}
	for _, s := range bad {
		_, err := ParseWindow(s)
		require.Error(t, err, s)
	}
}

func TestParseWindowsKeepsOrder(t *testing.T) {
	t.Parallel()

	ws, err := ParseWindows([]WindowSpec{{At: "17:00", Action: "reset"}, {At: "08:00", Action: "digest_previous_day"}})
	require.NoError(t, err)
	require.Equal(t, 17, ws[0].Hour)
	require.Equal(t, ActionDigestPreviousDay, ws[1].Action.Kind)

	_, err = ParseWindows([]WindowSpec{{At: "x", Action: "reset"}})
	require.ErrorContains(t, err, "schedule.windows[0]")
}

func TestHourLabel(t *testing.T) {
	t.Parallel()

	require.Equal(t, "오전 12시", HourLabel(clock(0, 0, 0)))
	require.Equal(t, "오전 8시", HourLabel(clock(8, 0, 0)))
	require.Equal(t, "오후 12시", HourLabel(clock(12, 30, 0)))
	require.Equal(t, "오후 5시", HourLabel(clock(17, 0, 0)))
}
