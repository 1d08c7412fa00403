package config

import (
	"folionotify/internal/notify"
	"folionotify/internal/schedule"
	"folionotify/internal/source/dart"
	"folionotify/internal/source/naver"
	"folionotify/internal/storage"
)

// Config is the on-disk configuration (JSON or YAML). Secrets never live
// here; see Secrets.
type Config struct {
	Logging  LoggingConfig  `json:"logging"`
	Storage  storage.Config `json:"storage"`
	Schedule ScheduleConfig `json:"schedule"`
	Pipeline PipelineConfig `json:"pipeline"`
	Dedup    DedupConfig    `json:"dedup"`
	Telegram TelegramConfig `json:"telegram"`
	Sources  SourcesConfig  `json:"sources"`
	Serve    ServeConfig    `json:"serve"`
	Keys     KeysConfig     `json:"keys"`
}

type LoggingConfig struct {
	Level    string          `json:"level"`
	Console  bool            `json:"console"`
	File     LoggingFile     `json:"file"`
	Telegram LoggingTelegram `json:"telegram"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LoggingTelegram struct {
	Enabled    bool   `json:"enabled"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

// ScheduleConfig lists the daily windows in priority order. When Windows is
// empty the stock plan (midnight reset plus three digests) is used.
type ScheduleConfig struct {
	Windows []schedule.WindowSpec `json:"windows,omitempty"`
	// TimezoneOffset is a fixed offset such as "+09:00".
	TimezoneOffset string `json:"timezone_offset,omitempty"`
}

// PipelineConfig controls the incremental pass.
//
// All durations are Go duration strings (e.g. "2h", "30s").
type PipelineConfig struct {
	NewsWindow       string `json:"news_window,omitempty"`
	ReportWindowDays int    `json:"report_window_days,omitempty"`
	Workers          int    `json:"workers,omitempty"`
	TaskTimeout      string `json:"task_timeout,omitempty"`
	SendNews         *bool  `json:"send_news,omitempty"`
	SendReports      *bool  `json:"send_reports,omitempty"`
	// DryRun logs messages instead of sending them. State is still saved.
	DryRun bool `json:"dry_run,omitempty"`
}

// DedupConfig tunes near-duplicate suppression for news titles. Pointers
// distinguish "omitted" from an explicit zero.
type DedupConfig struct {
	Threshold   *float64 `json:"threshold,omitempty"`
	MinKeywords *int     `json:"min_keywords,omitempty"`
}

type TelegramConfig = notify.TelegramConfig

type SourcesConfig struct {
	Naver NaverSource `json:"naver"`
	DART  DARTSource  `json:"dart"`
}

type NaverSource struct {
	Enabled *bool `json:"enabled,omitempty"`
	naver.Config
}

type DARTSource struct {
	Enabled *bool `json:"enabled,omitempty"`
	dart.Config
	// ReportLinkBase prefixes receipt numbers in messages.
	ReportLinkBase string `json:"report_link_base,omitempty"`
}

// ServeConfig is used by the long-running "serve" mode only.
type ServeConfig struct {
	Addr string `json:"addr,omitempty"`
	// Tick is a cron spec (e.g. "@every 5m", "*/5 * * * *"). Empty disables
	// the in-process trigger; passes then run only on HTTP requests.
	Tick string `json:"tick,omitempty"`
	// ShutdownTimeout is a Go duration string.
	ShutdownTimeout string `json:"shutdown_timeout,omitempty"`
}

// KeysConfig names the blobs in the store.
type KeysConfig struct {
	Watchlist string `json:"watchlist,omitempty"`
	State     string `json:"state,omitempty"`
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func (p PipelineConfig) NewsEnabled() bool    { return boolOr(p.SendNews, true) }
func (p PipelineConfig) ReportsEnabled() bool { return boolOr(p.SendReports, true) }
func (s NaverSource) IsEnabled() bool         { return boolOr(s.Enabled, true) }
func (s DARTSource) IsEnabled() bool          { return boolOr(s.Enabled, true) }
