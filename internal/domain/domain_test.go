package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestItemTime(t *testing.T) {
	t.Parallel()

	got, ok := Item{Date: "2024.01.01 09:00"}.Time(KST)
	require.True(t, ok)
	require.Equal(t, time.Date(2024, 1, 1, 9, 0, 0, 0, KST), got)

	for _, raw := range []string{"", "yesterday", "2024-01-01 09:00"} {
		_, ok := Item{Date: raw}.Time(KST)
		require.False(t, ok, raw)
	}
}

func TestDecodeStateDefaults(t *testing.T) {
	t.Parallel()

	s, err := DecodeState(nil)
	require.NoError(t, err)
	require.NotNil(t, s.News)
	require.NotNil(t, s.Reports)

	s, err = DecodeState([]byte(`{"printed_reports": {"ACME": [{"title": "t", "url": "1", "date": "x"}]}}`))
	require.NoError(t, err)
	require.Empty(t, s.News)
	require.Equal(t, []Item{{Title: "t", URL: "1"}}, s.Reports["ACME"])

	_, err = DecodeState([]byte(`{"printed_news": [`))
	require.Error(t, err)
}

func TestStateCloneIsDeep(t *testing.T) {
	t.Parallel()

	s := EmptyState()
	s.News["ACME"] = []Item{{URL: "u1"}}
	c := s.Clone()
	c.News["ACME"][0].URL = "changed"
	c.News["OTHER"] = nil

	require.Equal(t, "u1", s.News["ACME"][0].URL)
	require.NotContains(t, s.News, "OTHER")
}

func TestDecodeWatchlist(t *testing.T) {
	t.Parallel()

	entries, err := DecodeWatchlist([]byte(`{"Zeta": ["005930", null], "Alpha": [null, "00126380"]}`))
	require.NoError(t, err)
	require.Equal(t, []WatchlistEntry{
		{Company: "Alpha", ReportID: "00126380"},
		{Company: "Zeta", NewsID: "005930"},
	}, entries)
}

func TestDecodeWatchlistRejectsBadShape(t *testing.T) {
	t.Parallel()

	for _, doc := range []string{
		`{"Alpha": ["005930"]}`,
		`{"Alpha": [1, null]}`,
		`["Alpha"]`,
		`{`,
	} {
		_, err := DecodeWatchlist([]byte(doc))
		require.Error(t, err, doc)
	}
}

func TestDecodeWatchlistRejectsNamesEqualAfterTrim(t *testing.T) {
	t.Parallel()

	_, err := DecodeWatchlist([]byte(`{"Acme": ["000001", null], " Acme": [null, "00000001"]}`))
	require.ErrorContains(t, err, "name the same company")

	entries, err := DecodeWatchlist([]byte(`{" Acme ": ["000001", null]}`))
	require.NoError(t, err)
	require.Equal(t, []WatchlistEntry{{Company: "Acme", NewsID: "000001"}}, entries)
}
