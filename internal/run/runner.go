// Package run performs one full pipeline pass: schedule actions, fan-out,
// reconciliation, notification and the state write.
package run

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"folionotify/internal/dedup"
	"folionotify/internal/digest"
	"folionotify/internal/domain"
	"folionotify/internal/fanout"
	"folionotify/internal/notify"
	"folionotify/internal/schedule"
	"folionotify/internal/storage"
	logx "folionotify/pkg/logx"
)

type Options struct {
	NewsWindow       time.Duration
	ReportWindowDays int
	Workers          int
	TaskTimeout      time.Duration
	Policy           dedup.Policy

	// SendNews and SendReports gate the incremental pass per kind. Digests
	// only need a news source.
	SendNews    bool
	SendReports bool
}

type Keys struct {
	Watchlist string
	State     string
}

// Runner is safe for concurrent use; passes are serialized.
type Runner struct {
	Store     storage.Store
	Notifier  notify.Notifier
	Sources   fanout.Sources
	Assembler digest.Assembler
	Windows   []schedule.Window
	Options   Options
	Keys      Keys
	Location  *time.Location
	Log       logx.Logger

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

func (r *Runner) now() time.Time {
	loc := r.Location
	if loc == nil {
		loc = domain.KST
	}
	if r.Now != nil {
		return r.Now().In(loc)
	}
	return time.Now().In(loc)
}

func (r *Runner) keys() Keys {
	k := r.Keys
	if k.Watchlist == "" {
		k.Watchlist = "watchlist.json"
	}
	if k.State == "" {
		k.State = "last_message.json"
	}
	return k
}

func (r *Runner) logger() logx.Logger {
	if r.Log.IsZero() {
		return logx.Nop()
	}
	return r.Log
}

// Run performs one pass and never panics on collaborator failures; every
// failure is reflected in the returned Outcome.
func (r *Runner) Run(ctx context.Context) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	out := Outcome{RunID: uuid.NewString()}
	log := r.logger().With(logx.String("run_id", out.RunID))
	now := r.now()
	keys := r.keys()

	finish := func(o Outcome) Outcome {
		o.Duration = time.Since(start)
		fields := []logx.Field{
			logx.String("outcome", o.String()),
			logx.Int("items", o.Items),
			logx.Int("failed", o.Failed),
			logx.Duration("dur", o.Duration),
		}
		if o.IsError() {
			log.Error("run finished", fields...)
		} else {
			log.Info("run finished", fields...)
		}
		return o
	}
	fail := func(err error) Outcome {
		out.Status = StatusError
		out.Err = err
		return finish(out)
	}

	log.Info("run started", logx.Time("now", now))

	state, err := r.loadState(ctx, keys.State)
	switch {
	case errors.Is(err, errStoreIO):
		return fail(err)
	case err != nil:
		log.Warn("state unreadable; starting empty", logx.Err(err))
	}

	watchlist := &lazyWatchlist{load: func() ([]domain.WatchlistEntry, error) { return r.loadWatchlist(ctx, keys.Watchlist) }}

	if w, ok := schedule.Gate(now, r.Windows); ok {
		out.Window = w.Name
		log.Info("schedule window matched", logx.String("window", w.Name), logx.String("action", w.Action.String()))
		switch w.Action.Kind {
		case schedule.ActionReset:
			state = domain.EmptyState()
			if err := r.saveState(ctx, keys.State, state); err != nil {
				log.Error("state reset failed", logx.Err(err))
			} else {
				log.Info("state reset")
			}
		case schedule.ActionDigestRecent, schedule.ActionDigestPreviousDay:
			if err := r.sendDigest(ctx, log, now, w.Action, watchlist); err != nil {
				log.Error("digest failed", logx.String("window", w.Name), logx.Err(err))
			}
		}
	}

	entries, err := watchlist.get()
	if err != nil {
		return fail(err)
	}

	src := r.Sources
	if !r.Options.SendNews {
		src.News = nil
	}
	if !r.Options.SendReports {
		src.Reports = nil
	}
	results := fanout.FetchAll(ctx, entries, state, src, fanout.Options{
		Workers:          r.Options.Workers,
		TaskTimeout:      r.Options.TaskTimeout,
		NewsWindow:       r.Options.NewsWindow,
		ReportWindowDays: r.Options.ReportWindowDays,
		Policy:           r.Options.Policy,
		Now:              now,
	}, log)

	cs := fanout.Merge(&state, results)
	out.Failed = cs.Failed

	text, n := r.Assembler.Assemble(cs.News, cs.Reports)
	out.Items = n
	if n == 0 {
		out.Status = StatusNoNew
		return finish(out)
	}

	// A failed send is reported but not retried: history advances either way.
	var sendErr error
	if err := r.notifier(log).Send(ctx, text); err != nil {
		sendErr = &NotifySendError{Err: err}
		log.Error("send failed", logx.Int("items", n), logx.Err(err))
	}

	if cs.AnyChange {
		if err := r.saveState(ctx, keys.State, state); err != nil {
			return fail(err)
		}
	}
	if sendErr != nil {
		return fail(sendErr)
	}
	out.Status = StatusSent
	return finish(out)
}

// Reset clears the persisted state immediately.
func (r *Runner) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveState(ctx, r.keys().State, domain.EmptyState())
}

func (r *Runner) notifier(log logx.Logger) notify.Notifier {
	if r.Notifier == nil {
		return notify.DryRun{Log: log}
	}
	return r.Notifier
}

var errStoreIO = errors.New("store read failed")

// loadState returns an empty state for an absent blob. A corrupt blob yields
// an empty state plus a *StateLoadError; a store failure is wrapped with
// errStoreIO so the caller can treat it as fatal.
func (r *Runner) loadState(ctx context.Context, key string) (domain.State, error) {
	b, ok, err := r.Store.Load(ctx, key)
	if err != nil {
		return domain.EmptyState(), &StateLoadError{Key: key, Err: fmt.Errorf("%w: %w", errStoreIO, err)}
	}
	if !ok {
		return domain.EmptyState(), nil
	}
	st, err := domain.DecodeState(b)
	if err != nil {
		return domain.EmptyState(), &StateLoadError{Key: key, Err: err}
	}
	return st, nil
}

func (r *Runner) saveState(ctx context.Context, key string, st domain.State) error {
	if err := storage.SaveJSON(ctx, r.Store, key, st); err != nil {
		return &StateSaveError{Key: key, Err: err}
	}
	return nil
}

func (r *Runner) loadWatchlist(ctx context.Context, key string) ([]domain.WatchlistEntry, error) {
	b, ok, err := r.Store.Load(ctx, key)
	if err != nil {
		return nil, &WatchlistError{Key: key, Err: err}
	}
	if !ok {
		return nil, &WatchlistError{Key: key, Err: errors.New("not found")}
	}
	entries, err := domain.DecodeWatchlist(b)
	if err != nil {
		return nil, &WatchlistError{Key: key, Err: err}
	}
	return entries, nil
}

// lazyWatchlist loads at most once per pass; digests and the incremental
// pass share the result.
type lazyWatchlist struct {
	load    func() ([]domain.WatchlistEntry, error)
	done    bool
	entries []domain.WatchlistEntry
	err     error
}

func (l *lazyWatchlist) get() ([]domain.WatchlistEntry, error) {
	if !l.done {
		l.entries, l.err = l.load()
		l.done = true
	}
	return l.entries, l.err
}
