// Package livesync pulls the live upstream resources through the SWR
// cache and folds recent incidents into the persistent store.
package livesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danscan/githubdownfall.com/internal/cache"
	"github.com/danscan/githubdownfall.com/internal/store"
	"github.com/danscan/githubdownfall.com/internal/upstream"
)

// Cache key per live resource.
const (
	KeyStatus     = "status"
	KeyUnresolved = "unresolved"
	KeyIncidents  = "incidents"
)

// Fetcher is the subset of the upstream client live sync needs.
type Fetcher interface {
	StatusJSON(ctx context.Context) ([]byte, error)
	UnresolvedJSON(ctx context.Context) ([]byte, error)
	RecentIncidentsJSON(ctx context.Context) ([]byte, error)
}

// Result carries the live values for the status deriver. Either field
// may be nil/empty when the upstream was unreachable and no cached value
// existed.
type Result struct {
	Status     *upstream.Status
	Unresolved []upstream.IncidentRecord
}

// Syncer performs one best-effort live sync per call.
type Syncer struct {
	cache *cache.Cache
	repo  store.Repository
	feed  Fetcher
}

// NewSyncer creates a syncer over the given cache, store and feed client.
func NewSyncer(c *cache.Cache, repo store.Repository, feed Fetcher) *Syncer {
	return &Syncer{cache: c, repo: repo, feed: feed}
}

// Sync retrieves the three live resources concurrently through the SWR
// cache and upserts each recent incident when that resource yielded
// data. Fetch failures degrade to stale or absent values and never fail
// the call; only store write failures are returned, after all writes
// were attempted.
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	var statusRaw, unresolvedRaw, recentRaw []byte

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		statusRaw, _ = s.cache.Get(ctx, KeyStatus, s.feed.StatusJSON)
	}()
	go func() {
		defer wg.Done()
		unresolvedRaw, _ = s.cache.Get(ctx, KeyUnresolved, s.feed.UnresolvedJSON)
	}()
	go func() {
		defer wg.Done()
		recentRaw, _ = s.cache.Get(ctx, KeyIncidents, s.feed.RecentIncidentsJSON)
	}()
	wg.Wait()

	result := &Result{}

	if statusRaw != nil {
		var resp upstream.StatusResponse
		if err := json.Unmarshal(statusRaw, &resp); err != nil {
			slog.Warn("decode live status failed", "error", err)
		} else {
			result.Status = &resp.Status
		}
	}

	if unresolvedRaw != nil {
		var resp upstream.IncidentsResponse
		if err := json.Unmarshal(unresolvedRaw, &resp); err != nil {
			slog.Warn("decode unresolved incidents failed", "error", err)
		} else {
			result.Unresolved = resp.Incidents
		}
	}

	var storeErrs []error
	if recentRaw != nil {
		var resp upstream.IncidentsResponse
		if err := json.Unmarshal(recentRaw, &resp); err != nil {
			slog.Warn("decode recent incidents failed", "error", err)
		} else {
			for _, rec := range resp.Incidents {
				incident := rec.ToDomain()
				if err := s.repo.UpsertIncident(ctx, &incident); err != nil {
					storeErrs = append(storeErrs, fmt.Errorf("sync incident %s: %w", rec.ID, err))
				}
			}
		}
	}

	return result, errors.Join(storeErrs...)
}
