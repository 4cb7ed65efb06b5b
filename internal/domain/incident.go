package domain

import "time"

// Impact is the severity tier the upstream feed assigns to an incident.
type Impact string

const (
	ImpactCritical Impact = "critical"
	ImpactMajor    Impact = "major"
	ImpactMinor    Impact = "minor"
	ImpactNone     Impact = "none"
)

// Weight returns the numeric severity score used by the heatmap.
// Unknown tiers score like "none" so a new upstream tier never zeroes a day.
func (i Impact) Weight() int {
	switch i {
	case ImpactCritical:
		return 4
	case ImpactMajor:
		return 3
	case ImpactMinor:
		return 2
	default:
		return 1
	}
}

// Incident is one event from the upstream status feed. The ID is assigned
// by the feed and is stable across refetches; re-ingesting the same ID
// replaces every field.
type Incident struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Impact     Impact     `json:"impact"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	StartedAt  time.Time  `json:"started_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	Shortlink  string     `json:"shortlink"`
}

// Resolved reports whether the incident has been formally closed.
func (i Incident) Resolved() bool {
	return i.ResolvedAt != nil
}
