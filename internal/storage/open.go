package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logx "folionotify/pkg/logx"
)

// Open initializes the configured store.
// A disabled store is returned when Driver is empty or "none"; every call on
// it fails with ErrDisabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return disabled{}, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if raw := strings.TrimSpace(cfg.BusyTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("storage.busy_timeout: %w", err)
		}
		cfg.busyTimeout = d
	}
	log = log.With(logx.String("comp", "storage"), logx.String("driver", driver))

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}

type disabled struct{}

func (disabled) Load(context.Context, string) ([]byte, bool, error) { return nil, false, ErrDisabled }
func (disabled) Save(context.Context, string, []byte) error         { return ErrDisabled }
func (disabled) Close() error                                       { return nil }

func validKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("storage: empty key")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
