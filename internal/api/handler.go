// Package api exposes the read API consumed by the presentation layer.
package api

import (
	"net/http"
	"time"

	"github.com/danscan/githubdownfall.com/internal/heatmap"
	"github.com/danscan/githubdownfall.com/internal/livesync"
	"github.com/danscan/githubdownfall.com/internal/pkg/ctxlog"
	"github.com/danscan/githubdownfall.com/internal/pkg/httputil"
	"github.com/danscan/githubdownfall.com/internal/status"
	"github.com/danscan/githubdownfall.com/internal/store"
	"github.com/go-chi/chi/v5"
)

// Handler serves the heatmap, status and incidents endpoints. Every
// request triggers a live sync first so the response reflects the
// freshest data the cache allows.
type Handler struct {
	syncer *livesync.Syncer
	repo   store.Repository
	now    func() time.Time
}

// NewHandler creates an API handler.
func NewHandler(syncer *livesync.Syncer, repo store.Repository) *Handler {
	return &Handler{syncer: syncer, repo: repo, now: time.Now}
}

// RegisterRoutes registers the read API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/heatmap", h.Heatmap)
	r.Get("/status", h.Status)
	r.Get("/incidents", h.Incidents)
}

// Heatmap returns the one-year severity grid.
func (h *Handler) Heatmap(w http.ResponseWriter, r *http.Request) {
	h.sync(r)

	incidents, err := h.repo.ListIncidents(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.JSON(w, http.StatusOK, heatmap.Build(incidents, h.now()))
}

// Status returns the derived status label and outage duration.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	live := h.sync(r)

	incidents, err := h.repo.ListIncidents(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.JSON(w, http.StatusOK, status.Derive(live, incidents, h.now()))
}

// Incidents returns all stored incidents, newest first.
func (h *Handler) Incidents(w http.ResponseWriter, r *http.Request) {
	incidents, err := h.repo.ListIncidents(r.Context())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, nil)
		return
	}

	httputil.JSON(w, http.StatusOK, incidents)
}

// sync runs a best-effort live sync. Upstream failures already degraded
// inside the syncer; a store write failure is logged loudly but must not
// take down the read path.
func (h *Handler) sync(r *http.Request) *livesync.Result {
	live, err := h.syncer.Sync(r.Context())
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("live sync store write failed", "error", err)
	}
	return live
}
