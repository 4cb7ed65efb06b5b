// Package status derives the human-facing status label and elapsed
// duration from live sync output and stored incidents.
package status

import (
	"fmt"
	"math"
	"time"

	"github.com/danscan/githubdownfall.com/internal/domain"
	"github.com/danscan/githubdownfall.com/internal/livesync"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Summary is the derived presentation state.
type Summary struct {
	Indicator string `json:"indicator"`
	Label     string `json:"label"`
	Duration  string `json:"duration"`
}

var labels = map[string]string{
	"critical": "Critical Outage",
	"major":    "Major Outage",
	"minor":    "Minor Outage",
	"none":     "All Systems Operational",
}

var titleCaser = cases.Title(language.English)

// Derive is a pure function of the live result, the stored incidents and
// the current time.
func Derive(live *livesync.Result, incidents []domain.Incident, now time.Time) Summary {
	indicator := "none"
	if live != nil && live.Status != nil && live.Status.Indicator != "" {
		indicator = live.Status.Indicator
	}

	label, ok := labels[indicator]
	if !ok {
		// Unknown tier from the feed still renders as an outage.
		label = titleCaser.String(indicator) + " Outage"
	}

	var unresolved []domain.Incident
	if live != nil {
		for _, rec := range live.Unresolved {
			unresolved = append(unresolved, rec.ToDomain())
		}
	}

	anchor := deriveAnchor(indicator, unresolved, incidents, now)
	return Summary{
		Indicator: indicator,
		Label:     label,
		Duration:  formatDuration(now.Sub(anchor)),
	}
}

// deriveAnchor picks the reference instant the duration is measured
// from: start of the current outage, last movement on open incidents,
// last recovery, or now when nothing ever happened.
func deriveAnchor(indicator string, unresolved, incidents []domain.Incident, now time.Time) time.Time {
	if indicator != "none" && len(unresolved) > 0 {
		earliest := unresolved[0].StartedAt
		for _, incident := range unresolved[1:] {
			if incident.StartedAt.Before(earliest) {
				earliest = incident.StartedAt
			}
		}
		return earliest
	}

	if len(unresolved) > 0 {
		latest := unresolved[0].UpdatedAt
		for _, incident := range unresolved[1:] {
			if incident.UpdatedAt.After(latest) {
				latest = incident.UpdatedAt
			}
		}
		return latest
	}

	var latestResolved *time.Time
	for _, incident := range incidents {
		if !incident.Resolved() {
			continue
		}
		if latestResolved == nil || incident.ResolvedAt.After(*latestResolved) {
			latestResolved = incident.ResolvedAt
		}
	}
	if latestResolved != nil {
		return *latestResolved
	}

	return now
}

// formatDuration renders the elapsed time in the coarsest sensible unit:
// minutes under an hour (floored at one), hours under a day, days after.
func formatDuration(elapsed time.Duration) string {
	if elapsed < time.Hour {
		minutes := int(math.Round(elapsed.Minutes()))
		if minutes < 1 {
			minutes = 1
		}
		return fmt.Sprintf("for %d min", minutes)
	}
	if elapsed < 24*time.Hour {
		hours := int(math.Round(elapsed.Hours()))
		return fmt.Sprintf("for %d hr", hours)
	}
	days := int(math.Round(elapsed.Hours() / 24))
	return fmt.Sprintf("for %d days", days)
}
