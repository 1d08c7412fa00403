package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"folionotify/internal/dedup"
	"folionotify/internal/domain"
	"folionotify/internal/schedule"
	"folionotify/internal/storage"
	"folionotify/internal/task/pool"
)

const (
	DefaultNewsWindow      = "2h"
	DefaultTaskTimeout     = "30s"
	DefaultTimezoneOffset  = "+09:00"
	DefaultServeAddr       = ":8080"
	DefaultShutdownTimeout = "10s"
	DefaultWatchlistKey    = "watchlist.json"
	DefaultStateKey        = "last_message.json"
)

func storageDefault() storage.Config {
	return storage.Config{Driver: "file", Path: "./data"}
}

// Default returns a config that runs against a local file store.
func Default() *Config {
	c := &Config{
		Logging: LoggingConfig{Level: "info", Console: true},
	}
	c.Defaults()
	return c
}

// Defaults fills omitted fields in place.
func (c *Config) Defaults() {
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.Storage.Driver) == "" {
		c.Storage = storageDefault()
	}
	if strings.TrimSpace(c.Schedule.TimezoneOffset) == "" {
		c.Schedule.TimezoneOffset = DefaultTimezoneOffset
	}
	if strings.TrimSpace(c.Pipeline.NewsWindow) == "" {
		c.Pipeline.NewsWindow = DefaultNewsWindow
	}
	if c.Pipeline.ReportWindowDays <= 0 {
		c.Pipeline.ReportWindowDays = 1
	}
	if c.Pipeline.Workers <= 0 {
		c.Pipeline.Workers = pool.DefaultWorkers
	}
	if strings.TrimSpace(c.Pipeline.TaskTimeout) == "" {
		c.Pipeline.TaskTimeout = DefaultTaskTimeout
	}
	if c.Dedup.Threshold == nil {
		v := dedup.DefaultThreshold
		c.Dedup.Threshold = &v
	}
	if c.Dedup.MinKeywords == nil {
		v := dedup.DefaultMinKeywords
		c.Dedup.MinKeywords = &v
	}
	if strings.TrimSpace(c.Serve.Addr) == "" {
		c.Serve.Addr = DefaultServeAddr
	}
	if strings.TrimSpace(c.Serve.ShutdownTimeout) == "" {
		c.Serve.ShutdownTimeout = DefaultShutdownTimeout
	}
	if strings.TrimSpace(c.Keys.Watchlist) == "" {
		c.Keys.Watchlist = DefaultWatchlistKey
	}
	if strings.TrimSpace(c.Keys.State) == "" {
		c.Keys.State = DefaultStateKey
	}
}

// Validate checks every field that is parsed later, so a config that passes
// here cannot fail during wiring.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := c.Windows(); err != nil {
		add(err)
	}
	if _, err := c.Location(); err != nil {
		add(err)
	}
	if d, err := ParseDurationField("pipeline.news_window", c.Pipeline.NewsWindow); err != nil {
		add(err)
	} else if d <= 0 {
		add(errors.New("pipeline.news_window must be > 0"))
	}
	_, err := ParseDurationField("pipeline.task_timeout", c.Pipeline.TaskTimeout)
	add(err)
	_, err = ParseDurationField("serve.shutdown_timeout", c.Serve.ShutdownTimeout)
	add(err)

	if t := c.Dedup.Threshold; t != nil && (*t < 0 || *t > 1) {
		add(fmt.Errorf("dedup.threshold must be within [0,1], got %v", *t))
	}
	if m := c.Dedup.MinKeywords; m != nil && *m < 0 {
		add(fmt.Errorf("dedup.min_keywords must be >= 0, got %d", *m))
	}
	if spec := strings.TrimSpace(c.Serve.Tick); spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			add(fmt.Errorf("serve.tick: %w", err))
		}
	}
	for _, k := range []struct{ name, v string }{{"keys.watchlist", c.Keys.Watchlist}, {"keys.state", c.Keys.State}} {
		if strings.ContainsAny(k.v, `/\`) {
			add(fmt.Errorf("%s must be a plain name, got %q", k.name, k.v))
		}
	}
	return errors.Join(errs...)
}

// Windows returns the configured schedule, or the stock one.
func (c *Config) Windows() ([]schedule.Window, error) {
	if len(c.Schedule.Windows) == 0 {
		return schedule.DefaultWindows(), nil
	}
	return schedule.ParseWindows(c.Schedule.Windows)
}

// Location returns the fixed zone used for scheduling and item dates.
func (c *Config) Location() (*time.Location, error) {
	raw := strings.TrimSpace(c.Schedule.TimezoneOffset)
	if raw == "" || raw == DefaultTimezoneOffset {
		return domain.KST, nil
	}
	t, err := time.Parse("-07:00", raw)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone_offset: invalid offset %q", raw)
	}
	_, off := t.Zone()
	return time.FixedZone("UTC"+raw, off), nil
}

func (c *Config) DedupPolicy() dedup.Policy {
	p := dedup.DefaultPolicy()
	if c.Dedup.Threshold != nil {
		p.Threshold = *c.Dedup.Threshold
	}
	if c.Dedup.MinKeywords != nil {
		p.MinKeywords = *c.Dedup.MinKeywords
	}
	return p
}
