// Package heatmap derives the week/day severity grid from stored
// incidents. The grid is recomputed fresh on every request and never
// persisted.
package heatmap

import (
	"time"

	"github.com/danscan/githubdownfall.com/internal/domain"
)

const dateLayout = "2006-01-02"

// Day is one UTC calendar day in the grid.
type Day struct {
	Date      string            `json:"date"`
	Severity  int               `json:"severity"`
	Count     int               `json:"count"`
	Incidents []domain.Incident `json:"incidents"`
}

// Grid is the presentation-ready heatmap: ordered weeks of exactly
// seven days each, oldest first.
type Grid struct {
	Weeks       [][]Day `json:"weeks"`
	MaxSeverity int     `json:"max_severity"`
}

// Build buckets incidents into UTC days of their started_at and lays out
// a one-year window ending today, aligned so the first day falls on a
// Sunday even if that pulls in days before the one-year mark. Days
// without incidents appear with zero severity; MaxSeverity is floored at
// one so consumers can divide by it.
func Build(incidents []domain.Incident, now time.Time) *Grid {
	buckets := make(map[string]*Day)
	for _, incident := range incidents {
		key := incident.StartedAt.UTC().Format(dateLayout)
		day, ok := buckets[key]
		if !ok {
			day = &Day{Date: key}
			buckets[key] = day
		}
		day.Severity += incident.Impact.Weight()
		day.Count++
		day.Incidents = append(day.Incidents, incident)
	}

	today := truncateDay(now.UTC())
	start := today.AddDate(-1, 0, 0)
	start = start.AddDate(0, 0, -int(start.Weekday()))

	spanDays := int(today.Sub(start).Hours()/24) + 1
	weekCount := (spanDays + 6) / 7

	maxSeverity := 1
	weeks := make([][]Day, 0, weekCount)
	for w := 0; w < weekCount; w++ {
		week := make([]Day, 0, 7)
		for i := 0; i < 7; i++ {
			date := start.AddDate(0, 0, w*7+i)
			key := date.Format(dateLayout)
			if day, ok := buckets[key]; ok {
				week = append(week, *day)
				if day.Severity > maxSeverity {
					maxSeverity = day.Severity
				}
				continue
			}
			week = append(week, Day{Date: key, Incidents: []domain.Incident{}})
		}
		weeks = append(weeks, week)
	}

	return &Grid{Weeks: weeks, MaxSeverity: maxSeverity}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
