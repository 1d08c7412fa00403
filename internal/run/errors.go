package run

import (
	"fmt"

	"folionotify/internal/fanout"
)

// SourceFetchError is one company's failed fetch. It never fails a run.
type SourceFetchError = fanout.FetchError

// StateLoadError means the persisted state could not be read or decoded.
type StateLoadError struct {
	Key string
	Err error
}

func (e *StateLoadError) Error() string { return fmt.Sprintf("load state %s: %v", e.Key, e.Err) }
func (e *StateLoadError) Unwrap() error { return e.Err }

// StateSaveError means the state write failed. If a message was already sent
// the next run may announce the same items again.
type StateSaveError struct {
	Key string
	Err error
}

func (e *StateSaveError) Error() string { return fmt.Sprintf("save state %s: %v", e.Key, e.Err) }
func (e *StateSaveError) Unwrap() error { return e.Err }

// NotifySendError wraps a failed message delivery.
type NotifySendError struct {
	Err error
}

func (e *NotifySendError) Error() string { return fmt.Sprintf("notify: %v", e.Err) }
func (e *NotifySendError) Unwrap() error { return e.Err }

// WatchlistError means the watchlist is missing or malformed.
type WatchlistError struct {
	Key string
	Err error
}

func (e *WatchlistError) Error() string { return fmt.Sprintf("watchlist %s: %v", e.Key, e.Err) }
func (e *WatchlistError) Unwrap() error { return e.Err }
