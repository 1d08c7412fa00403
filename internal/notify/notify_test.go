package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logx "folionotify/pkg/logx"
)

func TestSplitTextShort(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"hello"}, splitText("hello", 10, "HTML"))
	require.Equal(t, []string{""}, splitText("", 10, "HTML"))
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	t.Parallel()

	lines := make([]string, 0, 50)
	for i := 0; i < 50; i++ {
		lines = append(lines, strings.Repeat("가", 30))
	}
	text := strings.Join(lines, "\n")

	chunks := splitText(text, 100, "HTML")
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		require.LessOrEqual(t, len([]rune(c)), 100)
		for _, ln := range strings.Split(c, "\n") {
			require.Len(t, []rune(ln), 30)
		}
	}
	require.Equal(t, text, strings.Join(chunks, "\n"))
}

func TestSplitTextKeepsTagsWhole(t *testing.T) {
	t.Parallel()

	// No newlines: the cut would land inside the anchor tag.
	text := strings.Repeat("x", 45) + `<a href="https://example.test/very/long">t</a>` + strings.Repeat("y", 40)
	chunks := splitText(text, 60, "HTML")
	require.Equal(t, strings.Repeat("x", 45), chunks[0])
	require.True(t, strings.HasPrefix(chunks[1], "<a href="))
	require.Equal(t, text, strings.Join(chunks, ""))
}

type sent struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

func fakeBotAPI(t *testing.T) (*httptest.Server, func() []sent) {
	t.Helper()

	var (
		mu  sync.Mutex
		got []sent
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botT0KEN/sendMessage", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var s sent
		assert.NoError(t, json.Unmarshal(body, &s))
		mu.Lock()
		got = append(got, s)
		n := len(got)
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": map[string]any{
				"message_id": n,
				"date":       1700000000,
				"chat":       map[string]any{"id": -100123, "type": "supergroup"},
				"text":       s.Text,
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, func() []sent {
		mu.Lock()
		defer mu.Unlock()
		return append([]sent(nil), got...)
	}
}

func TestTelegramSend(t *testing.T) {
	t.Parallel()

	srv, got := fakeBotAPI(t)
	tg, err := NewTelegram(TelegramConfig{APIURL: srv.URL}, "T0KEN", "-100123", logx.Nop())
	require.NoError(t, err)

	require.NoError(t, tg.Send(context.Background(), "<b>hi</b>"))
	require.NoError(t, tg.SendPlain(context.Background(), "plain"))

	msgs := got()
	require.Len(t, msgs, 2)
	require.Equal(t, "-100123", msgs[0].ChatID)
	require.Equal(t, "<b>hi</b>", msgs[0].Text)
	require.Equal(t, "HTML", msgs[0].ParseMode)
	require.Equal(t, "plain", msgs[1].Text)
	require.Empty(t, msgs[1].ParseMode)
}

func TestTelegramSendCanceled(t *testing.T) {
	t.Parallel()

	srv, got := fakeBotAPI(t)
	tg, err := NewTelegram(TelegramConfig{APIURL: srv.URL}, "T0KEN", "1", logx.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, tg.Send(ctx, "x"), context.Canceled)
	require.Empty(t, got())
}

func TestNewTelegramValidates(t *testing.T) {
	t.Parallel()

	_, err := NewTelegram(TelegramConfig{}, "", "1", logx.Nop())
	require.Error(t, err)
	_, err = NewTelegram(TelegramConfig{}, "t", " ", logx.Nop())
	require.Error(t, err)
	_, err = NewTelegram(TelegramConfig{Timeout: "x"}, "t", "1", logx.Nop())
	require.Error(t, err)
}

func TestDryRun(t *testing.T) {
	t.Parallel()

	require.NoError(t, DryRun{}.Send(context.Background(), "x"))
}
