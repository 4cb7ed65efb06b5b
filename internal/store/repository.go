// Package store defines the persistence contract for incidents and
// cached upstream payloads.
package store

import (
	"context"
	"errors"

	"github.com/danscan/githubdownfall.com/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Repository is the persistence interface consumed by live sync, the
// backfill job and the heatmap aggregator.
type Repository interface {
	// UpsertIncident inserts the incident or fully replaces the existing
	// row with the same ID (last-write-wins, no merge).
	UpsertIncident(ctx context.Context, incident *domain.Incident) error

	// ListIncidents returns all stored incidents ordered by started_at
	// descending.
	ListIncidents(ctx context.Context) ([]domain.Incident, error)

	// IncidentIDs returns the set of stored incident IDs. Used by the
	// backfill job to skip codes that are already present.
	IncidentIDs(ctx context.Context) (map[string]struct{}, error)

	// GetCacheEntry returns the cache row for key, or ErrNotFound.
	GetCacheEntry(ctx context.Context, key string) (*domain.CacheEntry, error)

	// PutCacheEntry inserts or fully replaces the cache row for entry.Key.
	PutCacheEntry(ctx context.Context, entry *domain.CacheEntry) error
}
