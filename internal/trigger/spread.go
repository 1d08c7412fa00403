package trigger

import (
	"hash/fnv"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

const maxStartupSpread = 30 * time.Second

// spreadSchedule delays the first activation of an interval schedule by a
// random jitter, then delegates to the base schedule.
type spreadSchedule struct {
	base  cron.Schedule
	first time.Time
}

func (s *spreadSchedule) Next(t time.Time) time.Time {
	if !s.first.IsZero() && t.Before(s.first) {
		return s.first
	}
	return s.base.Next(t)
}

var spreadSeq uint64

// withStartupSpread staggers "@every" schedules so replicas restarted together
// do not all fire at once. Calendar schedules are returned unchanged.
func withStartupSpread(sched cron.Schedule, now time.Time, tag string) (cron.Schedule, time.Duration) {
	every, ok := sched.(cron.ConstantDelaySchedule)
	if !ok || every.Delay <= 0 {
		return sched, 0
	}
	spreadMax := min(every.Delay, maxStartupSpread)

	seed := time.Now().UnixNano() ^ int64(atomic.AddUint64(&spreadSeq, 1)) ^ int64(fnv64a(tag))
	rng := rand.New(rand.NewSource(seed))
	jitter := time.Duration(rng.Int63n(int64(spreadMax)))
	return &spreadSchedule{base: every, first: now.Add(every.Delay + jitter)}, jitter
}

func fnv64a(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
