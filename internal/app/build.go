package app

import (
	"fmt"

	"folionotify/internal/config"
	"folionotify/internal/digest"
	"folionotify/internal/fanout"
	"folionotify/internal/notify"
	"folionotify/internal/run"
	"folionotify/internal/source/dart"
	"folionotify/internal/source/naver"
	"folionotify/internal/storage"
	logx "folionotify/pkg/logx"
)

func logConfig(cfg *config.Config, telegramReady bool) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Telegram: logx.TelegramConfig{
			Enabled:    cfg.Logging.Telegram.Enabled && telegramReady,
			MinLevel:   cfg.Logging.Telegram.MinLevel,
			RatePerSec: cfg.Logging.Telegram.RatePerSec,
		},
	}
}

// buildNotifier returns the Telegram client when credentials exist, or nil.
func buildNotifier(cfg *config.Config, sec config.Secrets, log logx.Logger) (*notify.Telegram, error) {
	if !sec.HasTelegram() {
		return nil, nil
	}
	return notify.NewTelegram(cfg.Telegram, sec.BotToken, sec.ChatID, log)
}

func buildSources(cfg *config.Config, sec config.Secrets, log logx.Logger) (fanout.Sources, error) {
	var src fanout.Sources

	if cfg.Sources.Naver.IsEnabled() {
		nc := cfg.Sources.Naver.Config
		if sec.UserAgent != "" {
			nc.UserAgent = sec.UserAgent
		}
		c, err := naver.New(nc, nil, log)
		if err != nil {
			return fanout.Sources{}, fmt.Errorf("sources.naver: %w", err)
		}
		src.News = c
	}

	if cfg.Sources.DART.IsEnabled() {
		if sec.APIKey == "" {
			log.Warn("disclosure source disabled: API_KEY is not set")
		} else {
			c, err := dart.New(cfg.Sources.DART.Config, sec.APIKey, nil, log)
			if err != nil {
				return fanout.Sources{}, fmt.Errorf("sources.dart: %w", err)
			}
			src.Reports = c
		}
	}
	return src, nil
}

// buildRunner maps a validated config onto a Runner.
func buildRunner(cfg *config.Config, sec config.Secrets, store storage.Store, tg *notify.Telegram, log logx.Logger) (*run.Runner, error) {
	windows, err := cfg.Windows()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	newsWindow, err := config.ParseDurationOrDefault("pipeline.news_window", cfg.Pipeline.NewsWindow, 0)
	if err != nil {
		return nil, err
	}
	taskTimeout, err := config.ParseDurationOrDefault("pipeline.task_timeout", cfg.Pipeline.TaskTimeout, 0)
	if err != nil {
		return nil, err
	}
	src, err := buildSources(cfg, sec, log)
	if err != nil {
		return nil, err
	}

	var n notify.Notifier = notify.DryRun{Log: log.With(logx.String("comp", "notify.dryrun"))}
	switch {
	case cfg.Pipeline.DryRun:
		log.Info("dry run: messages are logged, not sent")
	case tg == nil:
		log.Warn("BOT_TOKEN or CHAT_ID not set: messages are logged, not sent")
	default:
		n = tg
	}

	return &run.Runner{
		Store:     store,
		Notifier:  n,
		Sources:   src,
		Assembler: digest.Assembler{ReportLinkBase: cfg.Sources.DART.ReportLinkBase},
		Windows:   windows,
		Options: run.Options{
			NewsWindow:       newsWindow,
			ReportWindowDays: cfg.Pipeline.ReportWindowDays,
			Workers:          cfg.Pipeline.Workers,
			TaskTimeout:      taskTimeout,
			Policy:           cfg.DedupPolicy(),
			SendNews:         cfg.Pipeline.NewsEnabled(),
			SendReports:      cfg.Pipeline.ReportsEnabled(),
		},
		Keys:     run.Keys{Watchlist: cfg.Keys.Watchlist, State: cfg.Keys.State},
		Location: loc,
		Log:      log.With(logx.String("comp", "run")),
	}, nil
}
