package dart

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folionotify/internal/domain"
	logx "folionotify/pkg/logx"
)

func fixedNow() time.Time { return time.Date(2024, 3, 5, 9, 30, 0, 0, domain.KST) }

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, RatePerSec: 1000}, "k3y", nil, logx.Nop())
	require.NoError(t, err)
	c.Now = fixedNow
	return c
}

func TestFetchPages(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "/list.json", r.URL.Path)
		assert.Equal(t, "k3y", q.Get("crtfc_key"))
		assert.Equal(t, "00126380", q.Get("corp_code"))
		assert.Equal(t, "20240303", q.Get("bgn_de"))
		assert.Equal(t, "20240305", q.Get("end_de"))
		assert.Equal(t, "100", q.Get("page_count"))

		page, _ := strconv.Atoi(q.Get("page_no"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":     "000",
			"message":    "정상",
			"page_no":    page,
			"total_page": 2,
			"list": []map[string]string{
				{"corp_code": "00126380", "report_nm": "보고서 " + strconv.Itoa(page) + " ", "rcept_no": "2024030500000" + strconv.Itoa(page)},
				{"corp_code": "00126380", "report_nm": "no receipt", "rcept_no": ""},
			},
		})
	})

	items, err := c.Fetch(context.Background(), "00126380", 3)
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, []domain.Item{
		{Title: "보고서 1", URL: "20240305000001"},
		{Title: "보고서 2", URL: "20240305000002"},
	}, items)
}

func TestFetchNoData(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20240305", r.URL.Query().Get("bgn_de"))
		_, _ = w.Write([]byte(`{"status":"013","message":"조회된 데이타가 없습니다."}`))
	})
	items, err := c.Fetch(context.Background(), "00126380", 0)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestFetchAPIError(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"020","message":"요청 제한을 초과하였습니다."}`))
	})
	_, err := c.Fetch(context.Background(), "00126380", 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "020", apiErr.Status)
}

func TestFetchHTTPError(t *testing.T) {
	t.Parallel()

	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	_, err := c.Fetch(context.Background(), "00126380", 1)
	require.ErrorContains(t, err, "502")

	_, err = c.Fetch(context.Background(), "", 1)
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, " ", nil, logx.Nop())
	require.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New(Config{Timeout: "x"}, "k", nil, logx.Nop())
	require.Error(t, err)

	c, err := New(Config{}, "k", nil, logx.Logger{})
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, c.base)
}
