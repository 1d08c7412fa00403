package digest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"folionotify/internal/domain"
)

func TestAssembleEmptyKeepsSections(t *testing.T) {
	t.Parallel()

	text, n := Assembler{}.Assemble(nil, map[string][]domain.Item{"A": {}})
	require.Equal(t, 0, n)
	require.Equal(t, "<b>오늘의 신규 공시입니다.</b>\n없음\n\n<b>오늘의 신규 뉴스입니다.</b>\n없음", text)
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	reports := map[string][]domain.Item{
		"Beta": {{Title: "주요사항보고서  ", URL: "20240101000001"}},
	}
	news := map[string][]domain.Item{
		"Zeta":  {{Title: `Z "wins" <big> & more`, URL: "https://n.test/a?x=1&y=2"}},
		"Alpha": {{Title: "one", URL: "u1"}, {Title: "two", URL: "u2"}},
		"Empty": nil,
	}

	text, n := Assembler{}.Assemble(news, reports)
	require.Equal(t, 4, n)

	want := strings.Join([]string{
		"<b>오늘의 신규 공시입니다.</b>",
		"[Beta]",
		`- <a href="https://dart.fss.or.kr/dsaf001/main.do?rcpNo=20240101000001">주요사항보고서</a>`,
		"",
		"<b>오늘의 신규 뉴스입니다.</b>",
		"[Alpha]",
		`- <a href="u1">one</a>`,
		`- <a href="u2">two</a>`,
		"",
		"[Zeta]",
		`- <a href="https://n.test/a?x=1&amp;y=2">Z &quot;wins&quot; &lt;big&gt; &amp; more</a>`,
	}, "\n")
	require.Equal(t, want, text)
	require.NotContains(t, text, "Empty")
}

func TestAssembleCustomReportBase(t *testing.T) {
	t.Parallel()

	text, n := Assembler{ReportLinkBase: "https://viewer.test/?r="}.Assemble(nil, map[string][]domain.Item{"A": {{Title: "t", URL: "1"}}})
	require.Equal(t, 1, n)
	require.Contains(t, text, `<a href="https://viewer.test/?r=1">t</a>`)
	require.True(t, strings.HasSuffix(text, "<b>오늘의 신규 뉴스입니다.</b>\n없음"))
}

func TestAssembleDigest(t *testing.T) {
	t.Parallel()

	text, n := Assembler{}.AssembleDigest("2024.01.01 오전 8시 뉴스입니다.", map[string][]domain.Item{})
	require.Equal(t, 0, n)
	require.Empty(t, text)

	text, n = Assembler{}.AssembleDigest("2024.01.01 오전 8시 뉴스입니다.", map[string][]domain.Item{
		"A": {{Title: "no link"}, {Title: "x", URL: "u"}},
	})
	require.Equal(t, 2, n)
	require.Equal(t, "<b>2024.01.01 오전 8시 뉴스입니다.</b>\n[A]\n- no link\n- <a href=\"u\">x</a>", text)
}

func TestDistinct(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{Title: "Company A Q3 earnings beat estimates", URL: "u1"},
		{Title: "Company A Q3 earnings beats estimates", URL: "u2"},
		{Title: "Unrelated story here", URL: "u3"},
	}
	got := Distinct(items, 0.3)
	require.Len(t, got, 2)
	require.Equal(t, "u1", got[0].URL)
	require.Equal(t, "u3", got[1].URL)

	require.Empty(t, Distinct(nil, 0.3))
}

func TestDistinctZeroThresholdDropsOnlyOverlap(t *testing.T) {
	t.Parallel()

	items := []domain.Item{
		{Title: "alpha beta gamma", URL: "u1"},
		{Title: "delta epsilon zeta", URL: "u2"},
		{Title: "alpha omega sigma", URL: "u3"},
	}
	got := Distinct(items, 0)
	require.Len(t, got, 2)
	require.Equal(t, "u1", got[0].URL)
	require.Equal(t, "u2", got[1].URL)
}
