package logx

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Sender delivers a plain-text log record to an operator chat.
type Sender interface {
	SendPlain(ctx context.Context, text string) error
}

const (
	sinkQueue       = 64
	sinkSendTimeout = 5 * time.Second
	sinkMaxRunes    = 3500
	sinkMaxValue    = 600
)

// telegramSink is a zerolog.LevelWriter that forwards records at or above a
// minimum level to a Sender. It never blocks the logging call: records over
// the rate limit or beyond the queue are dropped.
type telegramSink struct {
	sender Sender
	queue  chan string

	mu       sync.Mutex
	minLevel zerolog.Level
	limiter  *rate.Limiter

	start   sync.Once
	stop    context.CancelFunc
	stopped chan struct{}
}

func newTelegramSink(sender Sender) *telegramSink {
	return &telegramSink{
		sender:   sender,
		queue:    make(chan string, sinkQueue),
		minLevel: zerolog.WarnLevel,
	}
}

func (t *telegramSink) configure(min zerolog.Level, lim *rate.Limiter) {
	t.mu.Lock()
	t.minLevel = min
	t.limiter = lim
	t.mu.Unlock()

	t.start.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		t.stop = cancel
		t.stopped = make(chan struct{})
		go t.loop(ctx)
	})
}

func (t *telegramSink) Write(p []byte) (int, error) {
	return t.WriteLevel(zerolog.InfoLevel, p)
}

func (t *telegramSink) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	t.mu.Lock()
	min, lim := t.minLevel, t.limiter
	t.mu.Unlock()

	if lim == nil || level < min || !lim.Allow() {
		return len(p), nil
	}
	if msg := renderRecord(p); msg != "" {
		select {
		case t.queue <- msg:
		default:
		}
	}
	return len(p), nil
}

func (t *telegramSink) loop(ctx context.Context) {
	defer close(t.stopped)
	for {
		select {
		case msg := <-t.queue:
			t.send(msg)
		case <-ctx.Done():
			// Flush what is queued so a one-shot pass still reports its errors.
			for {
				select {
				case msg := <-t.queue:
					t.send(msg)
				default:
					return
				}
			}
		}
	}
}

func (t *telegramSink) send(msg string) {
	ctx, cancel := context.WithTimeout(context.Background(), sinkSendTimeout)
	defer cancel()
	_ = t.sender.SendPlain(ctx, msg)
}

func (t *telegramSink) close() {
	if t.stop == nil {
		return
	}
	t.stop()
	<-t.stopped
}

// renderRecord turns a JSON log line into "[LEVEL] message" followed by one
// "- key=value" line per field, keys sorted.
func renderRecord(p []byte) string {
	raw := strings.TrimSpace(string(p))
	if raw == "" {
		return ""
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return clip(raw, sinkMaxRunes)
	}

	var b strings.Builder
	if lvl, _ := m["level"].(string); lvl != "" {
		b.WriteString("[" + strings.ToUpper(lvl) + "] ")
	}
	msg, _ := m["message"].(string)
	b.WriteString(msg)

	keys := make([]string, 0, len(m))
	for k := range m {
		switch k {
		case "time", "level", "message":
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n- %s=%s", k, clip(fmt.Sprint(m[k]), sinkMaxValue))
	}
	return clip(b.String(), sinkMaxRunes)
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n < 10 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
