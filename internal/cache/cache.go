// Package cache stores remote responses with a per-entry time-to-live.
//
// Backends share the Cache interface: an in-process Memory cache, Redis and a
// NATS JetStream key-value bucket. Keys are plain strings; Purge removes every
// key starting with a prefix, which is how revalidation tags are applied.
package cache

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Key prefixes used by the content sources.
const (
	PrefixTree     = "tree:"
	PrefixRaw      = "raw:"
	PrefixSnapshot = "snapshot:"
)

// Cache is a TTL key-value store. Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl. A non-positive ttl stores without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Purge removes all keys starting with prefix and returns how many were removed.
	// An empty prefix removes everything.
	Purge(ctx context.Context, prefix string) (int, error)
	Close() error
}

// Observer receives cache hit/miss notifications.
type Observer interface {
	IncCacheResult(hit bool)
}

// Loader produces a fresh value on a cache miss.
type Loader func(ctx context.Context) ([]byte, error)

// Fetcher wraps a Cache with get-or-load semantics. Concurrent loads of the
// same key are collapsed into one call. Cache failures are logged and the
// loader is used directly, so a broken cache never fails a request.
type Fetcher struct {
	cache    Cache
	group    singleflight.Group
	observer Observer
	logger   *slog.Logger
}

// NewFetcher returns a Fetcher over c. A nil c disables caching.
func NewFetcher(c Cache, observer Observer) *Fetcher {
	return &Fetcher{cache: c, observer: observer, logger: slog.Default().With("component", "cache")}
}

// Fetch returns the cached value for key or loads, stores and returns it.
func (f *Fetcher) Fetch(ctx context.Context, key string, ttl time.Duration, load Loader) ([]byte, error) {
	if f == nil || f.cache == nil {
		return load(ctx)
	}

	if v, ok, err := f.cache.Get(ctx, key); err != nil {
		f.logger.Warn("Cache read failed", logfields.CacheKey(key), logfields.Error(err))
	} else if ok {
		f.observe(true)
		return v, nil
	}
	f.observe(false)

	v, err, _ := f.group.Do(key, func() (any, error) {
		data, lerr := load(ctx)
		if lerr != nil {
			return nil, lerr
		}
		if serr := f.cache.Set(ctx, key, data, ttl); serr != nil {
			f.logger.Warn("Cache write failed", logfields.CacheKey(key), logfields.Error(serr))
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Purge forwards to the underlying cache.
func (f *Fetcher) Purge(ctx context.Context, prefix string) (int, error) {
	if f == nil || f.cache == nil {
		return 0, nil
	}
	return f.cache.Purge(ctx, prefix)
}

func (f *Fetcher) observe(hit bool) {
	if f.observer != nil {
		f.observer.IncCacheResult(hit)
	}
}
