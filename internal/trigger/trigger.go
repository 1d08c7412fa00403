// Package trigger fires pipeline passes on a cron schedule.
package trigger

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"folionotify/internal/run"
	logx "folionotify/pkg/logx"
)

// Runner performs one pass.
type Runner interface {
	Run(ctx context.Context) run.Outcome
}

// Ticker runs passes on a schedule. A tick that arrives while a pass
// started by this ticker is still running is skipped.
type Ticker struct {
	spec   string
	sched  cron.Schedule
	runner Runner
	loc    *time.Location
	log    logx.Logger

	running atomic.Bool
	fired   atomic.Uint64
	skipped atomic.Uint64
}

// New parses spec (standard 5-field cron or a descriptor like "@every 5m").
func New(spec string, r Runner, loc *time.Location, log logx.Logger) (*Ticker, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("trigger: empty schedule")
	}
	if r == nil {
		return nil, fmt.Errorf("trigger: nil runner")
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("trigger: parse %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.Local
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Ticker{spec: spec, sched: sched, runner: r, loc: loc, log: log}, nil
}

func (t *Ticker) Spec() string { return t.spec }

// Next reports the next activation after now.
func (t *Ticker) Next(now time.Time) time.Time { return t.sched.Next(now.In(t.loc)) }

// Run blocks until ctx is done, firing passes on schedule. It waits for an
// in-flight pass before returning.
func (t *Ticker) Run(ctx context.Context) error {
	sched, jitter := withStartupSpread(t.sched, time.Now().In(t.loc), t.spec)
	c := cron.New(cron.WithLocation(t.loc), cron.WithLogger(cronLogger{t.log}))
	c.Schedule(sched, cron.FuncJob(func() { t.Fire(ctx) }))
	c.Start()
	t.log.Info("trigger started",
		logx.String("spec", t.spec),
		logx.Duration("startup_spread", jitter),
		logx.Time("next", sched.Next(time.Now().In(t.loc))),
	)

	<-ctx.Done()
	<-c.Stop().Done()
	t.log.Info("trigger stopped",
		logx.Int64("fired", int64(t.fired.Load())),
		logx.Int64("skipped", int64(t.skipped.Load())),
	)
	return nil
}

// Fire runs one pass unless another is already in flight. The boolean is
// false when the tick was skipped.
func (t *Ticker) Fire(ctx context.Context) (run.Outcome, bool) {
	if !t.running.CompareAndSwap(false, true) {
		t.skipped.Add(1)
		t.log.Warn("trigger skipped: previous pass still running", logx.String("spec", t.spec))
		return run.Outcome{}, false
	}
	defer t.running.Store(false)
	if ctx.Err() != nil {
		return run.Outcome{}, false
	}

	t.fired.Add(1)
	out := t.runner.Run(ctx)
	fields := []logx.Field{logx.String("run_id", out.RunID), logx.String("outcome", out.String())}
	if out.IsError() {
		t.log.Error("scheduled pass failed", fields...)
	} else {
		t.log.Info("scheduled pass finished", fields...)
	}
	return out, true
}

// Stats returns how many ticks fired and how many were skipped.
func (t *Ticker) Stats() (fired, skipped uint64) {
	return t.fired.Load(), t.skipped.Load()
}

// cronLogger forwards cron's own diagnostics to logx.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []any) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
