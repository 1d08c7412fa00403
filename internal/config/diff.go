package config

import (
	"reflect"
	"strings"

	logx "folionotify/pkg/logx"
)

// SummarizeChange returns the changed top-level sections and safe log fields
// describing the new values. Keys and URLs of private endpoints are not logged.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 8)
	attrs := make([]logx.Field, 0, 16)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
			logx.Bool("logging.telegram_enabled", newCfg.Logging.Telegram.Enabled),
		)
	}
	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, "storage")
		attrs = append(attrs, logx.String("storage.driver", newCfg.Storage.Driver))
	}
	if !reflect.DeepEqual(oldCfg.Schedule, newCfg.Schedule) {
		changed = append(changed, "schedule")
		attrs = append(attrs,
			logx.Int("schedule.windows", len(newCfg.Schedule.Windows)),
			logx.String("schedule.timezone_offset", newCfg.Schedule.TimezoneOffset),
		)
	}
	if !reflect.DeepEqual(oldCfg.Pipeline, newCfg.Pipeline) {
		changed = append(changed, "pipeline")
		attrs = append(attrs,
			logx.String("pipeline.news_window", newCfg.Pipeline.NewsWindow),
			logx.Int("pipeline.workers", newCfg.Pipeline.Workers),
			logx.Bool("pipeline.dry_run", newCfg.Pipeline.DryRun),
		)
	}
	if !reflect.DeepEqual(oldCfg.Dedup, newCfg.Dedup) {
		changed = append(changed, "dedup")
		p := newCfg.DedupPolicy()
		attrs = append(attrs,
			logx.Float64("dedup.threshold", p.Threshold),
			logx.Int("dedup.min_keywords", p.MinKeywords),
		)
	}
	if !reflect.DeepEqual(oldCfg.Telegram, newCfg.Telegram) {
		changed = append(changed, "telegram")
		attrs = append(attrs, logx.Bool("telegram.api_url_set", strings.TrimSpace(newCfg.Telegram.APIURL) != ""))
	}
	if !reflect.DeepEqual(oldCfg.Sources, newCfg.Sources) {
		changed = append(changed, "sources")
		attrs = append(attrs,
			logx.Bool("sources.naver", newCfg.Sources.Naver.IsEnabled()),
			logx.Bool("sources.dart", newCfg.Sources.DART.IsEnabled()),
		)
	}
	if oldCfg.Serve != newCfg.Serve {
		changed = append(changed, "serve")
		attrs = append(attrs, logx.String("serve.tick", newCfg.Serve.Tick))
	}
	if oldCfg.Keys != newCfg.Keys {
		changed = append(changed, "keys")
		attrs = append(attrs,
			logx.String("keys.watchlist", newCfg.Keys.Watchlist),
			logx.String("keys.state", newCfg.Keys.State),
		)
	}
	return changed, attrs
}
