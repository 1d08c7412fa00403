// Package dart lists a company's disclosures through the OpenDART API.
package dart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"folionotify/internal/domain"
	logx "folionotify/pkg/logx"
)

const (
	DefaultBaseURL = "https://opendart.fss.or.kr/api"

	statusOK     = "000"
	statusNoData = "013"

	pageCount      = 100
	maxPages       = 50
	defaultRate    = 5.0
	defaultTimeout = 20 * time.Second
	dayLayout      = "20060102"
)

var ErrNoAPIKey = errors.New("dart: api key is empty")

type Config struct {
	BaseURL    string  `json:"base_url,omitempty"`
	RatePerSec float64 `json:"rate_per_sec,omitempty"`
	Timeout    string  `json:"timeout,omitempty"`
}

// APIError is a non-success status returned in an OpenDART response body.
type APIError struct {
	Status  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("opendart status %s: %s", e.Status, e.Message)
}

// Client is safe for concurrent use; all calls share one rate limiter.
type Client struct {
	base    string
	key     string
	http    *http.Client
	limiter *rate.Limiter
	log     logx.Logger

	// Now anchors the day window. Defaults to time.Now in KST.
	Now func() time.Time
}

func New(cfg Config, apiKey string, httpClient *http.Client, log logx.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := defaultTimeout
	if raw := strings.TrimSpace(cfg.Timeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("dart.timeout: invalid duration %q", cfg.Timeout)
		}
		timeout = d
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = defaultRate
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		base:    base,
		key:     apiKey,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		log:     log.With(logx.String("comp", "source.dart")),
		Now:     func() time.Time { return time.Now().In(domain.KST) },
	}, nil
}

type listResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	PageNo    int    `json:"page_no"`
	TotalPage int    `json:"total_page"`
	List      []struct {
		CorpCode string `json:"corp_code"`
		ReportNm string `json:"report_nm"`
		RceptNo  string `json:"rcept_no"`
		RceptDt  string `json:"rcept_dt"`
	} `json:"list"`
}

// Fetch returns disclosures filed by corpCode during the last windowDays
// calendar days, today included. Items carry the receipt number as URL and
// no date.
func (c *Client) Fetch(ctx context.Context, corpCode string, windowDays int) ([]domain.Item, error) {
	corpCode = strings.TrimSpace(corpCode)
	if corpCode == "" {
		return nil, errors.New("dart: empty corp code")
	}
	if windowDays < 1 {
		windowDays = 1
	}
	end := c.Now().In(domain.KST)
	begin := end.AddDate(0, 0, -(windowDays - 1))

	q := url.Values{}
	q.Set("crtfc_key", c.key)
	q.Set("corp_code", corpCode)
	q.Set("bgn_de", begin.Format(dayLayout))
	q.Set("end_de", end.Format(dayLayout))
	q.Set("page_count", strconv.Itoa(pageCount))

	var items []domain.Item
	for page := 1; page <= maxPages; page++ {
		q.Set("page_no", strconv.Itoa(page))
		resp, err := c.list(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("dart %s page %d: %w", corpCode, page, err)
		}
		if resp.Status == statusNoData {
			return items, nil
		}
		for _, r := range resp.List {
			if r.RceptNo == "" {
				continue
			}
			items = append(items, domain.Item{Title: strings.TrimSpace(r.ReportNm), URL: r.RceptNo})
		}
		if page >= resp.TotalPage {
			return items, nil
		}
	}
	c.log.Warn("page limit reached", logx.String("corp_code", corpCode), logx.Int("pages", maxPages))
	return items, nil
}

func (c *Client) list(ctx context.Context, q url.Values) (*listResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/list.json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("opendart returned %s", resp.Status)
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	switch out.Status {
	case statusOK, statusNoData:
		return &out, nil
	default:
		return nil, &APIError{Status: out.Status, Message: out.Message}
	}
}
