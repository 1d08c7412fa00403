// Package app wires config, storage, sources and the notifier into a pass
// runner, and hosts the long-running serve mode.
package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"folionotify/internal/config"
	"folionotify/internal/httpapi"
	"folionotify/internal/run"
	"folionotify/internal/runtime/supervisor"
	"folionotify/internal/storage"
	"folionotify/internal/trigger"
	logx "folionotify/pkg/logx"
)

type Options struct {
	// ConfigPath may be empty; built-in defaults are used then.
	ConfigPath string
	Secrets    config.Secrets
}

type App struct {
	cfgm    *config.Manager
	secrets config.Secrets

	log   logx.Logger
	logs  *logx.Service
	store storage.Store

	// passMu keeps passes single-writer across runner swaps on reload.
	passMu sync.Mutex
	mu     sync.RWMutex
	runner *run.Runner
}

func New(opts Options) (*App, error) {
	cfgm := config.NewManager(opts.ConfigPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	// The Telegram log sink needs the bot client before the logger exists,
	// so it gets a console logger of its own.
	bootLog := logx.NewConsole(cfg.Logging.Level).With(logx.String("comp", "notify.telegram"))
	tg, err := buildNotifier(cfg, opts.Secrets, bootLog)
	if err != nil {
		return nil, err
	}
	var sender logx.Sender
	if tg != nil {
		sender = tg
	}
	logSvc, log := logx.New(logConfig(cfg, tg != nil), sender)
	if cfg.Logging.Telegram.Enabled && tg == nil {
		log.Warn("logging.telegram is enabled but BOT_TOKEN or CHAT_ID is not set")
	}
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	store, err := storage.Open(cfg.Storage, log)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	r, err := buildRunner(cfg, opts.Secrets, store, tg, log)
	if err != nil {
		_ = store.Close()
		_ = logSvc.Close()
		return nil, err
	}

	return &App{
		cfgm:    cfgm,
		secrets: opts.Secrets,
		log:     log.With(logx.String("comp", "app")),
		logs:    logSvc,
		store:   store,
		runner:  r,
	}, nil
}

func (a *App) Logger() logx.Logger { return a.log }

func (a *App) current() *run.Runner {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.runner
}

// Run performs one pass. Concurrent callers are serialized.
func (a *App) Run(ctx context.Context) run.Outcome {
	a.passMu.Lock()
	defer a.passMu.Unlock()

	return a.current().Run(ctx)
}

// Reset clears the persisted state.
func (a *App) Reset(ctx context.Context) error {
	a.passMu.Lock()
	defer a.passMu.Unlock()
	if err := a.current().Reset(ctx); err != nil {
		return err
	}
	a.log.Info("state reset")
	return nil
}

// Serve runs the HTTP trigger, the optional cron trigger and the config
// watcher until ctx is done or one of them fails.
func (a *App) Serve(ctx context.Context) error {
	cfg := a.cfgm.Get()
	shutdown, err := config.ParseDurationOrDefault("serve.shutdown_timeout", cfg.Serve.ShutdownTimeout, httpapi.DefaultShutdownTimeout)
	if err != nil {
		return err
	}

	sup := supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	h := httpapi.New(a, a.log.With(logx.String("comp", "httpapi"))).Handler()
	addr := cfg.Serve.Addr
	sup.Go("http", func(c context.Context) error {
		return httpapi.ListenAndServe(c, addr, h, shutdown, a.log.With(logx.String("comp", "httpapi")))
	})

	ticks := &tickerSlot{sup: sup, app: a}
	if err := ticks.apply(cfg); err != nil {
		sup.Cancel()
		_ = sup.Wait(context.Background())
		return err
	}

	if a.cfgm.Path() != "" {
		sub := a.cfgm.Subscribe(8)
		sup.Go("config.watch", a.cfgm.Watch)
		sup.Go0("config.reload", func(c context.Context) {
			defer a.cfgm.Unsubscribe(sub)
			last := cfg
			for {
				select {
				case <-c.Done():
					return
				case next, ok := <-sub:
					if !ok {
						return
					}
					a.reload(last, next, ticks)
					last = next
				}
			}
		})
	}

	a.log.Info("serving", logx.String("addr", addr), logx.String("tick", cfg.Serve.Tick))
	<-sup.Context().Done()

	waitCtx, cancel := context.WithTimeout(context.Background(), shutdown+time.Second)
	defer cancel()
	sup.Cancel()
	err = sup.Wait(waitCtx)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		a.log.Warn("shutdown timed out", logx.Any("running", sup.Running()))
	case errors.Is(err, context.Canceled):
		return nil
	}
	return err
}

// reload applies a new config. Storage and listen address changes need a
// restart; everything else is rebuilt in place.
func (a *App) reload(old, next *config.Config, ticks *tickerSlot) {
	sections, attrs := config.SummarizeChange(old, next)
	if len(sections) == 0 {
		a.log.Debug("config reload received, but no effective changes detected")
		return
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Info("config change summary", fields...)

	tg, err := buildNotifier(next, a.secrets, a.log)
	if err != nil {
		a.log.Warn("config reload: notifier rebuild failed; keeping previous runner", logx.Err(err))
		return
	}
	a.logs.Apply(logConfig(next, tg != nil))

	if next.Storage != old.Storage {
		a.log.Warn("storage settings changed; restart to apply")
	}
	if next.Serve.Addr != old.Serve.Addr {
		a.log.Warn("serve.addr changed; restart to apply")
	}

	r, err := buildRunner(next, a.secrets, a.store, tg, a.log)
	if err != nil {
		a.log.Warn("config reload: runner rebuild failed; keeping previous runner", logx.Err(err))
		return
	}
	a.mu.Lock()
	a.runner = r
	a.mu.Unlock()

	if err := ticks.apply(next); err != nil {
		a.log.Warn("config reload: trigger rebuild failed", logx.Err(err))
	}
}

// Close releases the store and flushes logs.
func (a *App) Close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
	}
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return err
}

// tickerSlot owns the cron trigger so a reload can replace it.
type tickerSlot struct {
	sup *supervisor.Supervisor
	app *App

	mu     sync.Mutex
	spec   string
	cancel context.CancelFunc
}

func (s *tickerSlot) apply(cfg *config.Config) error {
	spec := strings.TrimSpace(cfg.Serve.Tick)

	s.mu.Lock()
	defer s.mu.Unlock()
	if spec == s.spec && (s.cancel != nil || spec == "") {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.spec = spec
	if spec == "" {
		return nil
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	t, err := trigger.New(spec, s.app, loc, s.app.log.With(logx.String("comp", "trigger")))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(s.sup.Context())
	s.cancel = cancel
	s.sup.Go("trigger", func(context.Context) error { return t.Run(ctx) })
	return nil
}
