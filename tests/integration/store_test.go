//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/danscan/githubdownfall.com/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UpsertIsIdempotent(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	startedAt := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	first := &domain.Incident{
		ID:        "inc-upsert",
		Name:      "first write",
		Status:    "investigating",
		Impact:    domain.ImpactMinor,
		CreatedAt: startedAt,
		UpdatedAt: startedAt,
		StartedAt: startedAt,
		Shortlink: "https://stspg.io/inc-upsert",
	}
	require.NoError(t, testRepo.UpsertIncident(ctx, first))

	resolvedAt := startedAt.Add(2 * time.Hour)
	second := &domain.Incident{
		ID:         "inc-upsert",
		Name:       "second write",
		Status:     "resolved",
		Impact:     domain.ImpactMajor,
		CreatedAt:  startedAt,
		UpdatedAt:  resolvedAt,
		StartedAt:  startedAt,
		ResolvedAt: &resolvedAt,
		Shortlink:  "https://stspg.io/inc-upsert",
	}
	require.NoError(t, testRepo.UpsertIncident(ctx, second))
	// Same record again: no duplication, no drift.
	require.NoError(t, testRepo.UpsertIncident(ctx, second))

	incidents, err := testRepo.ListIncidents(ctx)
	require.NoError(t, err)
	require.Len(t, incidents, 1)

	stored := incidents[0]
	assert.Equal(t, "second write", stored.Name)
	assert.Equal(t, "resolved", stored.Status)
	assert.Equal(t, domain.ImpactMajor, stored.Impact)
	require.NotNil(t, stored.ResolvedAt)
	assert.True(t, stored.ResolvedAt.Equal(resolvedAt))
}

func TestStore_ListOrdersByStartedAtDescending(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"oldest", "middle", "newest"} {
		startedAt := base.AddDate(0, 0, i*7)
		require.NoError(t, testRepo.UpsertIncident(ctx, &domain.Incident{
			ID:        id,
			Name:      id,
			Status:    "resolved",
			Impact:    domain.ImpactNone,
			CreatedAt: startedAt,
			UpdatedAt: startedAt,
			StartedAt: startedAt,
		}))
	}

	incidents, err := testRepo.ListIncidents(ctx)
	require.NoError(t, err)
	require.Len(t, incidents, 3)
	assert.Equal(t, "newest", incidents[0].ID)
	assert.Equal(t, "middle", incidents[1].ID)
	assert.Equal(t, "oldest", incidents[2].ID)
}

func TestStore_CacheEntryReplacedPerKey(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	require.NoError(t, testRepo.PutCacheEntry(ctx, &domain.CacheEntry{
		Key:       "status",
		Value:     []byte(`{"v":1}`),
		FetchedAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, testRepo.PutCacheEntry(ctx, &domain.CacheEntry{
		Key:       "status",
		Value:     []byte(`{"v":2}`),
		FetchedAt: time.Now(),
	}))

	entry, err := testRepo.GetCacheEntry(ctx, "status")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(entry.Value))

	var count int
	require.NoError(t, testDB.QueryRow(ctx, `SELECT count(*) FROM cache_entries`).Scan(&count))
	assert.Equal(t, 1, count)
}
