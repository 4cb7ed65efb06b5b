// Package upstream implements the read-only client for the third-party
// status feed: live API endpoints plus the paginated HTML history pages.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/danscan/githubdownfall.com/internal/pkg/metrics"
	"golang.org/x/time/rate"
)

// Config contains upstream client configuration.
type Config struct {
	BaseURL string
	// RequestsPerSecond throttles all calls against the feed. The feed is
	// a third-party service with informal rate limits; every request path
	// shares one limiter.
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the status feed. All methods honor the shared rate
// limiter before issuing a request.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a feed client with a transport tuned for polling a
// single upstream host.
func NewClient(cfg Config) *Client {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Transport: transport},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// StatusJSON fetches the live status payload.
func (c *Client) StatusJSON(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/api/v2/status.json", "status")
}

// UnresolvedJSON fetches the currently open incidents payload.
func (c *Client) UnresolvedJSON(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/api/v2/incidents/unresolved.json", "unresolved")
}

// RecentIncidentsJSON fetches the most-recent incidents payload.
func (c *Client) RecentIncidentsJSON(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/api/v2/incidents.json", "incidents")
}

// IncidentDetail fetches and decodes the full record for one incident code.
func (c *Client) IncidentDetail(ctx context.Context, code string) (*IncidentRecord, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/v2/incidents/%s.json", code), "incident_detail")
	if err != nil {
		return nil, err
	}

	var resp IncidentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode incident %s: %w", code, err)
	}
	return &resp.Incident, nil
}

// HistoryPage fetches the raw body of one paginated history listing.
// Pages are newest-first; each spans a fixed multi-month window.
func (c *Client) HistoryPage(ctx context.Context, page int) (string, error) {
	body, err := c.get(ctx, fmt.Sprintf("/history?page=%d", page), "history")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, path, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json, text/html")
	req.Header.Set("User-Agent", "githubdownfall/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstreamRequest(endpoint, fmt.Sprintf("http_%d", resp.StatusCode))
		return nil, fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error")
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	metrics.RecordUpstreamRequest(endpoint, "ok")
	return body, nil
}
