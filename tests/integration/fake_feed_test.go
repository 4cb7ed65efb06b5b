//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FakeFeed is an in-process stand-in for the upstream status feed. Tests
// mutate its canned payloads and inspect per-endpoint request counts.
type FakeFeed struct {
	mu           sync.Mutex
	status       string
	unresolved   string
	recent       string
	details      map[string]string
	historyPages map[int]string
	requests     map[string]int
}

// NewFakeFeed creates a feed reporting all systems operational.
func NewFakeFeed() *FakeFeed {
	f := &FakeFeed{}
	f.Reset()
	return f
}

// Reset restores the default operational state and clears counters.
func (f *FakeFeed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = `{"status":{"indicator":"none","description":"All Systems Operational"}}`
	f.unresolved = `{"incidents":[]}`
	f.recent = `{"incidents":[]}`
	f.details = make(map[string]string)
	f.historyPages = make(map[int]string)
	f.requests = make(map[string]int)
}

// SetStatus sets the live indicator payload.
func (f *FakeFeed) SetStatus(indicator, description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = fmt.Sprintf(`{"status":{"indicator":%q,"description":%q}}`, indicator, description)
}

// SetUnresolved sets the unresolved incident list payload.
func (f *FakeFeed) SetUnresolved(incidents ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unresolved = `{"incidents":[` + strings.Join(incidents, ",") + `]}`
}

// SetRecent sets the recent incident list payload.
func (f *FakeFeed) SetRecent(incidents ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recent = `{"incidents":[` + strings.Join(incidents, ",") + `]}`
}

// AddIncidentDetail registers a detail payload for one incident code.
func (f *FakeFeed) AddIncidentDetail(code, incidentJSON string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.details[code] = `{"incident":` + incidentJSON + `}`
}

// SetHistoryPage registers a history page body.
func (f *FakeFeed) SetHistoryPage(page int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyPages[page] = body
}

// Requests returns how many times path was requested.
func (f *FakeFeed) Requests(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *FakeFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[r.URL.Path]++

	switch {
	case r.URL.Path == "/api/v2/status.json":
		writeJSON(w, f.status)
	case r.URL.Path == "/api/v2/incidents/unresolved.json":
		writeJSON(w, f.unresolved)
	case r.URL.Path == "/api/v2/incidents.json":
		writeJSON(w, f.recent)
	case strings.HasPrefix(r.URL.Path, "/api/v2/incidents/"):
		code := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/v2/incidents/"), ".json")
		detail, ok := f.details[code]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, detail)
	case r.URL.Path == "/history":
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		body, ok := f.historyPages[page]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// incidentJSON renders one wire incident for feed payloads.
func incidentJSON(id, impact string, startedAt time.Time, resolvedAt *time.Time) string {
	resolved := "null"
	if resolvedAt != nil {
		resolved = strconv.Quote(resolvedAt.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf(`{
		"id": %q,
		"name": "incident %s",
		"status": "investigating",
		"impact": %q,
		"created_at": %q,
		"updated_at": %q,
		"started_at": %q,
		"resolved_at": %s,
		"shortlink": "https://stspg.io/%s"
	}`,
		id, id, impact,
		startedAt.UTC().Format(time.RFC3339),
		startedAt.UTC().Format(time.RFC3339),
		startedAt.UTC().Format(time.RFC3339),
		resolved, id)
}
