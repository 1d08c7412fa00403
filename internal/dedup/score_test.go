package dedup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeywordsSplitsOnDelimiterRuns(t *testing.T) {
	t.Parallel()

	got := Keywords(`  삼성전자, "HBM"  '공급'   확대,,`)
	require.Len(t, got, 4)
	for _, k := range []string{"삼성전자", "HBM", "공급", "확대"} {
		require.Contains(t, got, k)
	}
	require.Empty(t, Keywords(` ,'" `))
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		current   string
		prior     []string
		wantScore float64
		wantCount int
	}{
		{name: "no prior", current: "a b c", prior: nil, wantScore: 0, wantCount: 3},
		{name: "no keywords", current: " , ", prior: []string{"a"}, wantScore: 0, wantCount: 0},
		{name: "identical", current: "a b c", prior: []string{"a b c"}, wantScore: 1, wantCount: 3},
		{name: "max of priors", current: "a b c d", prior: []string{"a x", "a b c y"}, wantScore: 0.75, wantCount: 4},
		{name: "case sensitive", current: "Apple pie", prior: []string{"apple Pie"}, wantScore: 0, wantCount: 2},
		{name: "duplicate tokens count once", current: "a a b", prior: []string{"a"}, wantScore: 0.5, wantCount: 2},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			score, n := Score(tt.current, tt.prior)
			require.InDelta(t, tt.wantScore, score, 1e-9)
			require.Equal(t, tt.wantCount, n)
		})
	}
}

func TestScoreBounds(t *testing.T) {
	t.Parallel()

	titles := []string{"", "a", "a b", "b c d", "'x' \"y\", z", "a a a a"}
	for _, cur := range titles {
		score, _ := Score(cur, titles)
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, 1.0)

		zero, _ := Score(cur, nil)
		require.Zero(t, zero)
	}
}

func TestPolicyIsDuplicate(t *testing.T) {
	t.Parallel()

	p := Policy{Threshold: 0.3, MinKeywords: 6}
	first := "Company A Q3 earnings beat estimates"
	second := "Company A Q3 earnings beats estimates"

	require.False(t, p.IsDuplicate(first, nil))
	require.True(t, p.IsDuplicate(second, []string{first}))
	require.True(t, p.IsDuplicate("too short title", nil), "below minimum keyword count")
	require.False(t, p.IsDuplicate("one two three four five six", []string{"one seven eight nine ten eleven"}))
}
