package heatmap

import (
	"testing"
	"time"

	"github.com/danscan/githubdownfall.com/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func incident(id string, impact domain.Impact, startedAt time.Time) domain.Incident {
	return domain.Incident{
		ID:        id,
		Name:      "incident " + id,
		Status:    "resolved",
		Impact:    impact,
		CreatedAt: startedAt,
		UpdatedAt: startedAt,
		StartedAt: startedAt,
	}
}

func TestBuild_WindowShape(t *testing.T) {
	// A Tuesday. One year back is Mon 2025-09-01; aligning to Sunday
	// pulls in one lead day (Sun 2025-08-31).
	now := day(t, "2026-09-01T15:04:05Z")

	grid := Build(nil, now)

	require.NotEmpty(t, grid.Weeks)
	for i, week := range grid.Weeks {
		assert.Len(t, week, 7, "week %d", i)
	}

	first := grid.Weeks[0][0]
	assert.Equal(t, "2025-08-31", first.Date)

	// Every consecutive day appears exactly once, no gaps.
	previous := day(t, "2025-08-31T00:00:00Z").AddDate(0, 0, -1)
	covered := false
	for _, week := range grid.Weeks {
		for _, d := range week {
			parsed, err := time.Parse("2006-01-02", d.Date)
			require.NoError(t, err)
			assert.Equal(t, previous.AddDate(0, 0, 1), parsed)
			previous = parsed
			if d.Date == "2026-09-01" {
				covered = true
			}
		}
	}
	assert.True(t, covered, "window must include today")

	// 367 calendar days from 2025-08-31 through 2026-09-01 → 53 weeks.
	assert.Len(t, grid.Weeks, 53)
}

func TestBuild_SeverityAggregation(t *testing.T) {
	now := day(t, "2026-09-01T12:00:00Z")
	started := day(t, "2026-08-15T03:00:00Z")

	incidents := []domain.Incident{
		incident("a", domain.ImpactCritical, started),
		incident("b", domain.ImpactMinor, started.Add(4*time.Hour)),
		incident("c", domain.ImpactCritical, started.Add(8*time.Hour)),
	}

	grid := Build(incidents, now)

	found := findDay(t, grid, "2026-08-15")
	assert.Equal(t, 10, found.Severity, "critical+minor+critical = 4+2+4")
	assert.Equal(t, 3, found.Count)
	assert.Len(t, found.Incidents, 3)
	assert.Equal(t, 10, grid.MaxSeverity)
}

func TestBuild_ZeroDaysIncluded(t *testing.T) {
	now := day(t, "2026-09-01T12:00:00Z")

	grid := Build(nil, now)

	empty := findDay(t, grid, "2026-03-10")
	assert.Zero(t, empty.Severity)
	assert.Zero(t, empty.Count)
	assert.NotNil(t, empty.Incidents)
	assert.Empty(t, empty.Incidents)
	assert.Equal(t, 1, grid.MaxSeverity, "max severity is floored at one")
}

func TestBuild_BucketsByUTCDay(t *testing.T) {
	now := day(t, "2026-09-01T12:00:00Z")
	// 2026-08-16T01:30+05:30 is 2026-08-15T20:00Z.
	zone := time.FixedZone("IST", 5*3600+1800)
	started := time.Date(2026, 8, 16, 1, 30, 0, 0, zone)

	grid := Build([]domain.Incident{incident("a", domain.ImpactMajor, started)}, now)

	found := findDay(t, grid, "2026-08-15")
	assert.Equal(t, 3, found.Severity)
}

func TestBuild_IncidentsOutsideWindowIgnored(t *testing.T) {
	now := day(t, "2026-09-01T12:00:00Z")
	old := incident("ancient", domain.ImpactCritical, day(t, "2019-01-01T00:00:00Z"))

	grid := Build([]domain.Incident{old}, now)

	assert.Equal(t, 1, grid.MaxSeverity, "out-of-window incidents must not drive max severity")
	for _, week := range grid.Weeks {
		for _, d := range week {
			assert.Zero(t, d.Count)
		}
	}
}

func findDay(t *testing.T, grid *Grid, date string) Day {
	t.Helper()
	for _, week := range grid.Weeks {
		for _, d := range week {
			if d.Date == date {
				return d
			}
		}
	}
	t.Fatalf("day %s not in grid", date)
	return Day{}
}
