// Package fanout fetches every watchlist entry concurrently and reconciles
// each company's fresh items against a read-only snapshot of the persisted
// state. Writes happen later, sequentially, in Merge.
package fanout

import (
	"context"
	"fmt"
	"time"

	"folionotify/internal/dedup"
	"folionotify/internal/domain"
	"folionotify/internal/reconcile"
	"folionotify/internal/recency"
	"folionotify/internal/task/pool"
	logx "folionotify/pkg/logx"
)

type Kind string

const (
	KindNews    Kind = "news"
	KindReports Kind = "reports"
)

// NewsSource returns the latest articles for a stock code.
type NewsSource interface {
	Fetch(ctx context.Context, stockCode string) ([]domain.Item, error)
}

// ReportSource returns disclosures filed within the last windowDays days
// (1 = today only).
type ReportSource interface {
	Fetch(ctx context.Context, corpCode string, windowDays int) ([]domain.Item, error)
}

// Sources bundles the collaborators. A nil source disables that kind.
type Sources struct {
	News    NewsSource
	Reports ReportSource
}

type Options struct {
	Workers     int
	TaskTimeout time.Duration

	// NewsWindow is the trailing recency window applied to news.
	NewsWindow time.Duration
	// ReportWindowDays is passed through to the report source.
	ReportWindowDays int

	Policy dedup.Policy
	Now    time.Time
}

// FetchError marks a company whose fetch or reconcile failed this run.
type FetchError struct {
	Company string
	Kind    Kind
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Company, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Result is one company's contribution for one source kind.
type Result struct {
	Company string
	Kind    Kind
	Merged  []domain.Item
	New     []domain.Item
	Changed bool
	Err     error
}

func (r Result) Failed() bool { return r.Err != nil }

// FetchAll runs one task per entry per available source. snapshot is only
// read. Results arrive in completion order.
func FetchAll(ctx context.Context, entries []domain.WatchlistEntry, snapshot domain.State, src Sources, opt Options, log logx.Logger) []Result {
	if log.IsZero() {
		log = logx.Nop()
	}
	now := opt.Now
	if now.IsZero() {
		now = time.Now().In(domain.KST)
	}
	days := opt.ReportWindowDays
	if days <= 0 {
		days = 1
	}
	newsDup := reconcile.NewsDuplicate(opt.Policy)

	type meta struct {
		company string
		kind    Kind
	}
	var (
		jobs  []pool.Job[reconcile.Result]
		metas []meta
	)

	for _, e := range entries {
		e := e
		if src.News != nil && e.NewsID != "" {
			prior := snapshot.News[e.Company]
			jobs = append(jobs, pool.Job[reconcile.Result]{
				Name: string(KindNews) + ":" + e.Company,
				Run: func(ctx context.Context) (reconcile.Result, error) {
					items, err := src.News.Fetch(ctx, e.NewsID)
					if err != nil {
						return reconcile.Result{}, err
					}
					recent := recency.FilterRecent(items, opt.NewsWindow, now)
					return reconcile.Reconcile(e.Company, prior, recent, newsDup), nil
				},
			})
			metas = append(metas, meta{e.Company, KindNews})
		}
		if src.Reports != nil && e.ReportID != "" {
			prior := snapshot.Reports[e.Company]
			jobs = append(jobs, pool.Job[reconcile.Result]{
				Name: string(KindReports) + ":" + e.Company,
				Run: func(ctx context.Context) (reconcile.Result, error) {
					items, err := src.Reports.Fetch(ctx, e.ReportID, days)
					if err != nil {
						return reconcile.Result{}, err
					}
					return reconcile.Reconcile(e.Company, prior, items, nil), nil
				},
			})
			metas = append(metas, meta{e.Company, KindReports})
		}
	}

	outcomes := pool.Run(ctx, pool.Config{Workers: opt.Workers, Timeout: opt.TaskTimeout}, log, jobs)

	results := make([]Result, 0, len(outcomes))
	for _, o := range outcomes {
		m := metas[o.Index]
		r := Result{Company: m.company, Kind: m.kind}
		if o.Err != nil {
			r.Err = &FetchError{Company: m.company, Kind: m.kind, Err: o.Err}
			log.Warn("company fetch failed",
				logx.String("company", m.company),
				logx.String("kind", string(m.kind)),
				logx.Duration("dur", o.Duration),
				logx.Err(o.Err),
			)
		} else {
			r.Merged = o.Value.Merged
			r.New = o.Value.New
			r.Changed = o.Value.Changed
			log.Debug("company reconciled",
				logx.String("company", m.company),
				logx.String("kind", string(m.kind)),
				logx.Int("new", len(r.New)),
				logx.Duration("dur", o.Duration),
			)
		}
		results = append(results, r)
	}
	return results
}

// ChangeSet is the per-run record of newly admitted items.
type ChangeSet struct {
	News      map[string][]domain.Item
	Reports   map[string][]domain.Item
	AnyChange bool
	Failed    int
}

// Merge writes the merged histories of successful results into state and
// collects what is new. It must be called after FetchAll has returned.
func Merge(state *domain.State, results []Result) ChangeSet {
	cs := ChangeSet{News: map[string][]domain.Item{}, Reports: map[string][]domain.Item{}}
	if state.News == nil {
		state.News = domain.History{}
	}
	if state.Reports == nil {
		state.Reports = domain.History{}
	}
	for _, r := range results {
		if r.Failed() {
			cs.Failed++
			continue
		}
		if !r.Changed {
			continue
		}
		switch r.Kind {
		case KindNews:
			state.News[r.Company] = r.Merged
			cs.News[r.Company] = r.New
		case KindReports:
			state.Reports[r.Company] = r.Merged
			cs.Reports[r.Company] = r.New
		}
		cs.AnyChange = true
	}
	return cs
}
