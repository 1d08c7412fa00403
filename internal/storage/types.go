package storage

import (
	"context"
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "file": directory of JSON blobs, Path is the directory
//   - "sqlite": SQLite database file, Path is the file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite only; Go duration

	busyTimeout time.Duration
}

// Store is a blob store keyed by short names such as "watchlist.json".
//
// Load reports ok=false when the key has never been written.
type Store interface {
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}
