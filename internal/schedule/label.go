package schedule

import (
	"fmt"
	"time"
)

// HourLabel renders t's hour the Korean 12-hour way: "오전 8시", "오후 1시".
// Midnight is "오전 12시" and noon is "오후 12시".
func HourLabel(t time.Time) string {
	h := t.Hour()
	switch {
	case h == 0:
		return "오전 12시"
	case h < 12:
		return fmt.Sprintf("오전 %d시", h)
	case h == 12:
		return "오후 12시"
	default:
		return fmt.Sprintf("오후 %d시", h-12)
	}
}
