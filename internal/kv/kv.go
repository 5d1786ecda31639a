package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/salat/internal/config"
)

// Keys used by salat.
const (
	KeyPrayerTimes = "prayer_times_cache"
	KeyCompletion  = "checked_prayers"
)

// ErrUnavailable wraps every backend read or write failure.
var ErrUnavailable = errors.New("storage unavailable")

// Store is a durable mapping from string keys to string blobs. A missing key
// is reported as ok=false with a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open returns the backend selected by cfg.Backend.
func Open(cfg config.Storage) (Store, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFile(cfg.Path)
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath())
	case "redis":
		return NewRedis(RedisOptions{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: %s %q: %v", ErrUnavailable, op, key, err)
}
