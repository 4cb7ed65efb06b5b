//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/danscan/githubdownfall.com/internal/backfill"
	"github.com/danscan/githubdownfall.com/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyListing(year int, codes ...string) string {
	listing := fmt.Sprintf(`<html><script>var data = {"months":[{"name":"June","year":%d,"incidents":[`, year)
	for i, code := range codes {
		if i > 0 {
			listing += ","
		}
		listing += fmt.Sprintf(`{"code":%q,"impact":"minor","name":"incident %s"}`, code, code)
	}
	return listing + `]}]};</script></html>`
}

func newBackfillJob(pages, cutoffYear int) *backfill.Job {
	client := upstream.NewClient(upstream.Config{
		BaseURL:           feedServerURL,
		RequestsPerSecond: 1000,
		Burst:             100,
	})
	return backfill.NewJob(
		backfill.Config{Pages: pages, CutoffYear: cutoffYear, BatchWidth: 5},
		client,
		testRepo,
		upstream.EmbeddedJSONParser{},
	)
}

func TestBackfill_EndToEnd(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	startedAt := time.Now().UTC().Add(-30 * 24 * time.Hour)
	feed.SetHistoryPage(1, historyListing(time.Now().Year(), "bf-a", "bf-b"))
	feed.SetHistoryPage(2, historyListing(2017, "bf-ancient"))
	feed.AddIncidentDetail("bf-a", incidentJSON("bf-a", "critical", startedAt, nil))
	feed.AddIncidentDetail("bf-b", incidentJSON("bf-b", "minor", startedAt, nil))

	report, err := newBackfillJob(2, 2018).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, 2, report.Inserted)
	assert.Zero(t, report.Skipped)

	incidents, err := testRepo.ListIncidents(ctx)
	require.NoError(t, err)
	assert.Len(t, incidents, 2)
}

func TestBackfill_RerunInsertsNothing(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	startedAt := time.Now().UTC().Add(-10 * 24 * time.Hour)
	feed.SetHistoryPage(1, historyListing(time.Now().Year(), "bf-rerun"))
	feed.AddIncidentDetail("bf-rerun", incidentJSON("bf-rerun", "major", startedAt, nil))

	first, err := newBackfillJob(1, 2018).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, first.Inserted)

	second, err := newBackfillJob(1, 2018).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Candidates, "stored incidents are excluded on rerun")
	assert.Zero(t, second.Inserted)
}

func TestBackfill_MissingDetailSkipped(t *testing.T) {
	resetState(t)
	ctx := context.Background()

	startedAt := time.Now().UTC().Add(-5 * 24 * time.Hour)
	feed.SetHistoryPage(1, historyListing(time.Now().Year(), "bf-ok", "bf-gone"))
	feed.AddIncidentDetail("bf-ok", incidentJSON("bf-ok", "minor", startedAt, nil))
	// bf-gone has no detail payload: the feed returns 404.

	report, err := newBackfillJob(1, 2018).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Candidates)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
}
