// Package cache implements a stale-while-revalidate cache over the
// persistent cache table.
//
// Policy: synchronous-miss. A fresh entry is returned without fetching.
// A stale entry is returned immediately while a detached goroutine
// refreshes it, so a warm cache never blocks on the upstream. Only a
// completely cold key blocks on the fetch, seeding the table before
// returning.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/danscan/githubdownfall.com/internal/domain"
	"github.com/danscan/githubdownfall.com/internal/pkg/metrics"
	"github.com/danscan/githubdownfall.com/internal/store"
)

// FetchFunc produces the current upstream payload for a key.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Store is the subset of the repository the cache needs.
type Store interface {
	GetCacheEntry(ctx context.Context, key string) (*domain.CacheEntry, error)
	PutCacheEntry(ctx context.Context, entry *domain.CacheEntry) error
}

// Cache fronts named upstream fetches with a freshness window.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a cache with the given freshness window.
func New(st Store, ttl time.Duration) *Cache {
	return &Cache{
		store:    st,
		ttl:      ttl,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// Get returns the best available value for key. A nil, nil return means
// the key is cold and the fetch failed: callers treat it as "no data"
// rather than an error. A failed fetch never removes an existing entry.
func (c *Cache) Get(ctx context.Context, key string, fetch FetchFunc) ([]byte, error) {
	entry, err := c.store.GetCacheEntry(ctx, key)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		// A broken cache read degrades to a cold fetch; the table row,
		// if any, stays untouched.
		slog.Warn("cache read failed", "key", key, "error", err)
		entry = nil
	}

	if entry != nil {
		if entry.Age(c.now()) < c.ttl {
			metrics.RecordCacheLookup(key, "hit")
			return entry.Value, nil
		}

		metrics.RecordCacheLookup(key, "stale")
		c.refresh(key, fetch)
		return entry.Value, nil
	}

	metrics.RecordCacheLookup(key, "miss")
	value, err := fetch(ctx)
	if err != nil {
		metrics.RecordCacheLookup(key, "cold_failure")
		slog.Warn("cold cache fetch failed", "key", key, "error", err)
		return nil, nil
	}

	c.seed(ctx, key, value)
	return value, nil
}

// refresh revalidates key in a detached goroutine. Its completion is
// never awaited and its failure is swallowed: a slow or failing upstream
// must not delay the caller. Overlapping refreshes for one key are
// coalesced.
func (c *Cache) refresh(key string, fetch FetchFunc) {
	c.mu.Lock()
	if _, busy := c.inflight[key]; busy {
		c.mu.Unlock()
		return
	}
	c.inflight[key] = struct{}{}
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
		}()

		ctx := context.Background()
		value, err := fetch(ctx)
		if err != nil {
			metrics.RecordCacheRefresh(key, "failed")
			slog.Warn("background refresh failed", "key", key, "error", err)
			return
		}

		c.seed(ctx, key, value)
		metrics.RecordCacheRefresh(key, "ok")
	}()
}

func (c *Cache) seed(ctx context.Context, key string, value []byte) {
	err := c.store.PutCacheEntry(ctx, &domain.CacheEntry{
		Key:       key,
		Value:     value,
		FetchedAt: c.now(),
	})
	if err != nil {
		// The fetched value is still served to the caller; only the
		// memoization is lost.
		slog.Error("cache write failed", "key", key, "error", err)
	}
}
