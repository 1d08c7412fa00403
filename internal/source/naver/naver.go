// Package naver scrapes the per-company news list from Naver Finance.
package naver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"folionotify/internal/domain"
	logx "folionotify/pkg/logx"
)

const (
	DefaultBaseURL   = "https://finance.naver.com"
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127 Safari/537.36"

	acceptLanguage = "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"
	defaultTimeout = 20 * time.Second
)

type Config struct {
	BaseURL   string `json:"base_url,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Timeout   string `json:"timeout,omitempty"`
}

// Client fetches the news list of one stock code per call. It keeps a cookie
// jar so the warm-up request to the main page carries over to the news page.
type Client struct {
	base      string
	userAgent string
	http      *http.Client
	log       logx.Logger
}

// New builds a client. A nil httpClient gets a default one with a cookie jar.
func New(cfg Config, httpClient *http.Client, log logx.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	timeout := defaultTimeout
	if raw := strings.TrimSpace(cfg.Timeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("naver.timeout: invalid duration %q", cfg.Timeout)
		}
		timeout = d
	}
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		base:      base,
		userAgent: ua,
		http:      httpClient,
		log:       log.With(logx.String("comp", "source.naver")),
	}, nil
}

// Fetch returns the news items listed for stockCode, in page order, with
// duplicate URLs removed.
func (c *Client) Fetch(ctx context.Context, stockCode string) ([]domain.Item, error) {
	code := url.QueryEscape(strings.TrimSpace(stockCode))
	if code == "" {
		return nil, fmt.Errorf("naver: empty stock code")
	}
	mainURL := c.base + "/item/main.naver?code=" + code

	// Warm-up for cookies; the news page works without it most of the time.
	if _, err := c.get(ctx, mainURL, ""); err != nil {
		c.log.Debug("main page warm-up failed", logx.String("code", stockCode), logx.Err(err))
	}

	doc, err := c.get(ctx, c.base+"/item/news.naver?code="+code, mainURL)
	if err != nil {
		return nil, fmt.Errorf("naver news %s: %w", stockCode, err)
	}

	if src, ok := doc.Find("iframe#news_frame").First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		frame, err := c.get(ctx, c.base+strings.TrimSpace(src), mainURL)
		if err != nil {
			c.log.Warn("news frame fetch failed", logx.String("code", stockCode), logx.Err(err))
		} else {
			doc = frame
		}
	}

	return c.parse(doc), nil
}

func (c *Client) get(ctx context.Context, pageURL, referer string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("naver returned %s", resp.Status)
	}

	// Pages are served as EUC-KR; the reader picks the encoding from the
	// header, a meta tag, or sniffing.
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func (c *Client) parse(doc *goquery.Document) []domain.Item {
	table := doc.Find("table.type5").First()
	if table.Length() == 0 {
		return nil
	}

	var items []domain.Item
	seen := map[string]struct{}{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		links := row.Find("a.tit")
		if links.Length() == 0 {
			return
		}
		date := normalizeDate(row.Find("td.date").First().Text())

		links.Each(func(_ int, a *goquery.Selection) {
			title := strings.TrimSpace(a.Text())
			if title == "" {
				return
			}
			href, _ := a.Attr("href")
			u := c.normalizeURL(href)
			if u == "" {
				return
			}
			if _, dup := seen[u]; dup {
				return
			}
			seen[u] = struct{}{}
			items = append(items, domain.Item{Title: title, URL: u, Date: date})
		})
	})
	return items
}

func (c *Client) normalizeURL(href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "" || href == "#":
		return ""
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return c.base + href
	default:
		return c.base + "/" + strings.TrimLeft(href, "/")
	}
}

var spaces = regexp.MustCompile(`\s+`)

// normalizeDate collapses whitespace and canonicalizes "YYYY.MM.DD HH:MM".
// Unparseable text is returned cleaned; the recency filter drops it later.
func normalizeDate(raw string) string {
	cleaned := strings.TrimSpace(spaces.ReplaceAllString(raw, " "))
	if cleaned == "" {
		return ""
	}
	t, err := time.Parse(domain.DateLayout, cleaned)
	if err != nil {
		return cleaned
	}
	return t.Format(domain.DateLayout)
}
