package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"folionotify/internal/domain"
	"folionotify/internal/schedule"
	logx "folionotify/pkg/logx"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	c := Default()
	require.NoError(t, c.Validate())
	require.Equal(t, "file", c.Storage.Driver)
	require.Equal(t, "2h", c.Pipeline.NewsWindow)
	require.Equal(t, 10, c.Pipeline.Workers)
	require.Equal(t, "watchlist.json", c.Keys.Watchlist)
	require.Equal(t, "last_message.json", c.Keys.State)
	require.True(t, c.Pipeline.NewsEnabled())
	require.True(t, c.Sources.DART.IsEnabled())

	p := c.DedupPolicy()
	require.Equal(t, 0.3, p.Threshold)
	require.Equal(t, 6, p.MinKeywords)

	ws, err := c.Windows()
	require.NoError(t, err)
	require.Len(t, ws, 4)

	loc, err := c.Location()
	require.NoError(t, err)
	require.Equal(t, domain.KST, loc)
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	raw := `{
		"storage": {"driver": "sqlite", "path": "/tmp/x.db"},
		"pipeline": {"news_window": "90m", "workers": 3, "send_reports": false},
		"dedup": {"threshold": 0, "min_keywords": 1},
		"sources": {"naver": {"enabled": false}, "dart": {"rate_per_sec": 2, "report_link_base": "https://v.test/?r="}},
		"schedule": {"windows": [{"at": "07:30", "action": "digest_previous_day"}], "timezone_offset": "+08:00"}
	}`
	c, err := Decode("folionotify.json", []byte(raw))
	require.NoError(t, err)
	require.Equal(t, "sqlite", c.Storage.Driver)
	require.Equal(t, 3, c.Pipeline.Workers)
	require.False(t, c.Pipeline.ReportsEnabled())
	require.False(t, c.Sources.Naver.IsEnabled())
	require.Equal(t, 2.0, c.Sources.DART.RatePerSec)

	p := c.DedupPolicy()
	require.Equal(t, 0.0, p.Threshold)
	require.Equal(t, 1, p.MinKeywords)

	ws, err := c.Windows()
	require.NoError(t, err)
	require.Equal(t, schedule.ActionDigestPreviousDay, ws[0].Action.Kind)

	loc, err := c.Location()
	require.NoError(t, err)
	_, off := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	require.Equal(t, 8*3600, off)
}

func TestDecodeYAML(t *testing.T) {
	t.Parallel()

	raw := `
logging:
  level: debug
serve:
  addr: "127.0.0.1:9090"
  tick: "@every 5m"
keys:
  state: state.json
`
	c, err := Decode("folionotify.yaml", []byte(raw))
	require.NoError(t, err)
	require.Equal(t, "debug", c.Logging.Level)
	require.Equal(t, "@every 5m", c.Serve.Tick)
	require.Equal(t, "state.json", c.Keys.State)
	require.Equal(t, "watchlist.json", c.Keys.Watchlist)
}

func TestDecodeRejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown field": `{"bogus": 1}`,
		"trailing data": `{} {}`,
		"bad window":    `{"pipeline": {"news_window": "soon"}}`,
		"zero window":   `{"pipeline": {"news_window": "0s"}}`,
		"threshold":     `{"dedup": {"threshold": 1.5}}`,
		"min keywords":  `{"dedup": {"min_keywords": -1}}`,
		"tick":          `{"serve": {"tick": "every now and then"}}`,
		"schedule":      `{"schedule": {"windows": [{"at": "25:00", "action": "reset"}]}}`,
		"offset":        `{"schedule": {"timezone_offset": "KST"}}`,
		"key":           `{"keys": {"state": "../state.json"}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode("c.json", []byte(raw))
			require.Error(t, err)
		})
	}
}

func TestManagerWithoutFile(t *testing.T) {
	t.Parallel()

	m := NewManager("")
	c, err := m.Load()
	require.NoError(t, err)
	require.Same(t, c, m.Get())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, m.Watch(ctx))
}

func TestManagerWatchReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "folionotify.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pipeline": {"workers": 2}}`), 0o600))

	m := NewManager(path)
	m.debounce = 20 * time.Millisecond
	m.SetLogger(logx.Nop())
	_, err := m.Load()
	require.NoError(t, err)

	sub := m.Subscribe(1)
	defer m.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = m.Watch(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`{"pipeline": {"workers": "x"}}`), 0o600))
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 2, m.Get().Pipeline.Workers)

	require.NoError(t, os.WriteFile(path, []byte(`{"pipeline": {"workers": 7}}`), 0o600))
	select {
	case c := <-sub:
		require.Equal(t, 7, c.Pipeline.Workers)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
	require.Equal(t, 7, m.Get().Pipeline.Workers)
}

func TestLoadSecrets(t *testing.T) {
	t.Setenv("BOT_TOKEN", "tok")
	t.Setenv("CHAT_ID", "-1001")
	t.Setenv("API_KEY", "dart")
	t.Setenv("USER_AGENT", "")

	s, err := LoadSecrets()
	require.NoError(t, err)
	require.Equal(t, Secrets{BotToken: "tok", ChatID: "-1001", APIKey: "dart"}, s)
	require.True(t, s.HasTelegram())
	require.False(t, Secrets{BotToken: "tok"}.HasTelegram())
}

func TestSummarizeChange(t *testing.T) {
	t.Parallel()

	a := Default()
	b := Default()
	sections, _ := SummarizeChange(a, b)
	require.Empty(t, sections)

	b.Pipeline.Workers = 4
	b.Serve.Tick = "@every 1m"
	sections, attrs := SummarizeChange(a, b)
	require.Equal(t, []string{"pipeline", "serve"}, sections)
	require.NotEmpty(t, attrs)
}

func TestParseDurationOrDefault(t *testing.T) {
	t.Parallel()

	d, err := ParseDurationOrDefault("x", "", time.Minute)
	require.NoError(t, err)
	require.Equal(t, time.Minute, d)

	d, err = ParseDurationOrDefault("x", "0s", time.Minute)
	require.NoError(t, err)
	require.Equal(t, time.Minute, d)

	d, err = ParseDurationOrDefault("x", " 90s ", time.Minute)
	require.NoError(t, err)
	require.Equal(t, 90*time.Second, d)

	_, err = ParseDurationOrDefault("pipeline.task_timeout", "-1s", time.Minute)
	require.ErrorContains(t, err, "pipeline.task_timeout")
}

func TestEmptyYAMLIsDefault(t *testing.T) {
	t.Parallel()

	c, err := Decode("c.yaml", []byte("# nothing here\n"))
	require.NoError(t, err)
	require.Equal(t, Default().Pipeline, c.Pipeline)
}
