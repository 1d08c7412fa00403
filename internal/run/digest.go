package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"folionotify/internal/digest"
	"folionotify/internal/domain"
	"folionotify/internal/recency"
	"folionotify/internal/schedule"
	"folionotify/internal/task/pool"
	logx "folionotify/pkg/logx"
)

var errNoNewsSource = errors.New("no news source configured")

// sendDigest fetches news for every entry, keeps the requested time range,
// drops near-duplicate titles within each company and sends one message.
// Persisted state is neither read nor written.
func (r *Runner) sendDigest(ctx context.Context, log logx.Logger, now time.Time, act schedule.Action, wl *lazyWatchlist) error {
	if r.Sources.News == nil {
		return errNoNewsSource
	}
	entries, err := wl.get()
	if err != nil {
		return err
	}

	var (
		jobs      []pool.Job[[]domain.Item]
		companies []string
	)
	for _, e := range entries {
		if e.NewsID == "" {
			continue
		}
		id := e.NewsID
		jobs = append(jobs, pool.Job[[]domain.Item]{
			Name: "digest:" + e.Company,
			Run: func(ctx context.Context) ([]domain.Item, error) {
				return r.Sources.News.Fetch(ctx, id)
			},
		})
		companies = append(companies, e.Company)
	}

	outcomes := pool.Run(ctx, pool.Config{Workers: r.Options.Workers, Timeout: r.Options.TaskTimeout}, log, jobs)

	byCompany := map[string][]domain.Item{}
	for _, o := range outcomes {
		company := companies[o.Index]
		if o.Err != nil {
			log.Warn("digest fetch failed", logx.String("company", company), logx.Err(o.Err))
			continue
		}
		var items []domain.Item
		switch act.Kind {
		case schedule.ActionDigestPreviousDay:
			items = recency.FilterPreviousDay(o.Value, now)
		default:
			items = recency.FilterRecent(o.Value, act.Lookback, now)
		}
		if kept := digest.Distinct(items, r.Options.Policy.Threshold); len(kept) > 0 {
			byCompany[company] = kept
		}
	}

	header := fmt.Sprintf("%s %s 뉴스입니다.", now.Format("2006.01.02"), schedule.HourLabel(now))
	text, n := r.Assembler.AssembleDigest(header, byCompany)
	if n == 0 {
		log.Info("digest empty; nothing sent")
		return nil
	}
	if err := r.notifier(log).Send(ctx, text); err != nil {
		return &NotifySendError{Err: err}
	}
	log.Info("digest sent", logx.Int("items", n), logx.Int("companies", len(byCompany)))
	return nil
}
