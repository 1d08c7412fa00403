// Package digest turns per-company item lists into Telegram HTML messages.
package digest

import (
	"sort"
	"strings"

	"folionotify/internal/domain"
	"folionotify/pkg/tgui"
)

// DefaultReportLinkBase is the DART viewer URL; a receipt number is appended.
const DefaultReportLinkBase = "https://dart.fss.or.kr/dsaf001/main.do?rcpNo="

const (
	reportsHeader = "오늘의 신규 공시입니다."
	newsHeader    = "오늘의 신규 뉴스입니다."
	placeholder   = "없음"
)

type Assembler struct {
	// ReportLinkBase prefixes report URLs (receipt numbers). Empty uses
	// DefaultReportLinkBase.
	ReportLinkBase string
}

// Assemble renders the disclosures section followed by the news section and
// returns the total number of items rendered. Both headers are always present;
// an empty section carries the placeholder line.
func (a Assembler) Assemble(news, reports map[string][]domain.Item) (string, int) {
	base := a.ReportLinkBase
	if base == "" {
		base = DefaultReportLinkBase
	}

	reportLines, nr := section(reportsHeader, reports, func(it domain.Item) tgui.H {
		return tgui.Link(strings.TrimRight(it.Title, " \t\r\n"), base+it.URL)
	})
	newsLines, nn := section(newsHeader, news, itemLine)

	lines := append(reportLines, "")
	lines = append(lines, newsLines...)
	return strings.Join(lines, "\n"), nr + nn
}

// AssembleDigest renders a single headed news digest without a placeholder.
// It returns an empty string when there is nothing to send.
func (a Assembler) AssembleDigest(header string, news map[string][]domain.Item) (string, int) {
	body, n := companies(news, itemLine)
	if n == 0 {
		return "", 0
	}
	lines := append([]string{tgui.B(header).String()}, body...)
	return strings.Join(lines, "\n"), n
}

func itemLine(it domain.Item) tgui.H {
	if it.URL == "" {
		return tgui.Esc(it.Title)
	}
	return tgui.Link(it.Title, it.URL)
}

func section(header string, byCompany map[string][]domain.Item, line func(domain.Item) tgui.H) ([]string, int) {
	body, n := companies(byCompany, line)
	if n == 0 {
		body = []string{placeholder}
	}
	return append([]string{tgui.B(header).String()}, body...), n
}

// companies renders one "[name]" block per company with items, blocks
// separated by a blank line, companies in name order.
func companies(byCompany map[string][]domain.Item, line func(domain.Item) tgui.H) ([]string, int) {
	var out []string
	n := 0
	for _, company := range sortedCompanies(byCompany) {
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, "["+tgui.Esc(company).String()+"]")
		for _, it := range byCompany[company] {
			out = append(out, "- "+line(it).String())
			n++
		}
	}
	return out, n
}

func sortedCompanies(m map[string][]domain.Item) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		if len(v) == 0 {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
