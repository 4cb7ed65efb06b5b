// Package postgres provides the PostgreSQL implementation of the store
// repository.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/danscan/githubdownfall.com/internal/domain"
	"github.com/danscan/githubdownfall.com/internal/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements store.Repository using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// UpsertIncident inserts or fully replaces an incident by ID.
func (r *Repository) UpsertIncident(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (id, name, status, impact, created_at, updated_at, started_at, resolved_at, shortlink)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			impact = EXCLUDED.impact,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at,
			started_at = EXCLUDED.started_at,
			resolved_at = EXCLUDED.resolved_at,
			shortlink = EXCLUDED.shortlink
	`
	_, err := r.db.Exec(ctx, query,
		incident.ID,
		incident.Name,
		incident.Status,
		incident.Impact,
		incident.CreatedAt,
		incident.UpdatedAt,
		incident.StartedAt,
		incident.ResolvedAt,
		incident.Shortlink,
	)
	if err != nil {
		return fmt.Errorf("upsert incident %s: %w", incident.ID, err)
	}
	return nil
}

// ListIncidents returns all incidents ordered by started_at descending.
func (r *Repository) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	query := `
		SELECT id, name, status, impact, created_at, updated_at, started_at, resolved_at, shortlink
		FROM incidents
		ORDER BY started_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]domain.Incident, 0)
	for rows.Next() {
		var incident domain.Incident
		err := rows.Scan(
			&incident.ID,
			&incident.Name,
			&incident.Status,
			&incident.Impact,
			&incident.CreatedAt,
			&incident.UpdatedAt,
			&incident.StartedAt,
			&incident.ResolvedAt,
			&incident.Shortlink,
		)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		incidents = append(incidents, incident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}

	return incidents, nil
}

// IncidentIDs returns the set of stored incident IDs.
func (r *Repository) IncidentIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM incidents`)
	if err != nil {
		return nil, fmt.Errorf("list incident ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan incident id: %w", err)
		}
		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incident ids: %w", err)
	}

	return ids, nil
}

// GetCacheEntry retrieves the cache row for key.
func (r *Repository) GetCacheEntry(ctx context.Context, key string) (*domain.CacheEntry, error) {
	query := `
		SELECT key, value, fetched_at
		FROM cache_entries
		WHERE key = $1
	`
	var entry domain.CacheEntry
	err := r.db.QueryRow(ctx, query, key).Scan(&entry.Key, &entry.Value, &entry.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get cache entry %s: %w", key, err)
	}
	return &entry, nil
}

// PutCacheEntry inserts or fully replaces the cache row for entry.Key.
func (r *Repository) PutCacheEntry(ctx context.Context, entry *domain.CacheEntry) error {
	query := `
		INSERT INTO cache_entries (key, value, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			fetched_at = EXCLUDED.fetched_at
	`
	_, err := r.db.Exec(ctx, query, entry.Key, entry.Value, entry.FetchedAt)
	if err != nil {
		return fmt.Errorf("put cache entry %s: %w", entry.Key, err)
	}
	return nil
}
