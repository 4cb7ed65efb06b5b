package upstream

import (
	"time"

	"github.com/danscan/githubdownfall.com/internal/domain"
)

// Status is the live indicator reported by the feed's status endpoint.
type Status struct {
	Indicator   string `json:"indicator"`
	Description string `json:"description"`
}

// StatusResponse is the envelope of the status endpoint.
type StatusResponse struct {
	Status Status `json:"status"`
}

// IncidentRecord is one incident as serialized by the feed's API.
type IncidentRecord struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Impact     string     `json:"impact"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	StartedAt  time.Time  `json:"started_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
	Shortlink  string     `json:"shortlink"`
}

// IncidentsResponse is the envelope of the incident list endpoints.
type IncidentsResponse struct {
	Incidents []IncidentRecord `json:"incidents"`
}

// IncidentResponse is the envelope of the incident detail endpoint.
type IncidentResponse struct {
	Incident IncidentRecord `json:"incident"`
}

// ToDomain converts the wire record into the stored representation.
func (r IncidentRecord) ToDomain() domain.Incident {
	return domain.Incident{
		ID:         r.ID,
		Name:       r.Name,
		Status:     r.Status,
		Impact:     domain.Impact(r.Impact),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		StartedAt:  r.StartedAt,
		ResolvedAt: r.ResolvedAt,
		Shortlink:  r.Shortlink,
	}
}
