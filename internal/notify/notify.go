// Package notify delivers assembled messages to a chat.
package notify

import (
	"context"

	logx "folionotify/pkg/logx"
)

// Notifier sends one HTML message. Long messages may be delivered in
// several parts.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// DryRun logs messages instead of sending them.
type DryRun struct {
	Log logx.Logger
}

func (d DryRun) Send(_ context.Context, text string) error {
	log := d.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	log.Info("dry-run message", logx.Int("runes", len([]rune(text))), logx.String("text", text))
	return nil
}
