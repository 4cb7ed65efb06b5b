// Package backfill implements the one-shot batch job that reconstructs
// incident history from paginated listing pages and the detail endpoint.
package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danscan/githubdownfall.com/internal/store"
	"github.com/danscan/githubdownfall.com/internal/upstream"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Config contains backfill job configuration.
type Config struct {
	// Pages is how many history pages to walk, newest-first. Each page
	// spans a fixed multi-month window on the upstream side.
	Pages int
	// CutoffYear drops listed months earlier than this year.
	CutoffYear int
	// BatchWidth bounds concurrent detail fetches against the feed.
	BatchWidth int
}

// Client is the subset of the upstream client the job needs.
type Client interface {
	HistoryPage(ctx context.Context, page int) (string, error)
	IncidentDetail(ctx context.Context, code string) (*upstream.IncidentRecord, error)
}

// Report summarizes one job run.
type Report struct {
	RunID      string
	Pages      int
	Candidates int
	Inserted   int
	Skipped    int
}

// Job fetches missing historical incidents and upserts them.
type Job struct {
	cfg    Config
	client Client
	repo   store.Repository
	parser upstream.HistoryParser
}

// NewJob creates a backfill job.
func NewJob(cfg Config, client Client, repo store.Repository, parser upstream.HistoryParser) *Job {
	if cfg.BatchWidth <= 0 {
		cfg.BatchWidth = 5
	}
	return &Job{cfg: cfg, client: client, repo: repo, parser: parser}
}

// Run walks the configured history pages, collects incident codes not
// yet stored, fetches their full records with bounded concurrency and
// upserts them. Page fetch and per-code failures are skipped; a store
// write failure aborts the run.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID: uuid.NewString(),
		Pages: j.cfg.Pages,
	}
	logger := slog.With("run_id", report.RunID)
	logger.Info("starting backfill",
		"pages", j.cfg.Pages,
		"cutoff_year", j.cfg.CutoffYear,
		"batch_width", j.cfg.BatchWidth,
	)

	existing, err := j.repo.IncidentIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("load stored incident ids: %w", err)
	}

	codes := j.collectCodes(ctx, logger, existing)
	report.Candidates = len(codes)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.cfg.BatchWidth)

	for _, code := range codes {
		g.Go(func() error {
			record, err := j.client.IncidentDetail(gctx, code)
			if err != nil {
				// Transient fetch failure for one code: skip, no retry.
				logger.Warn("detail fetch failed", "code", code, "error", err)
				mu.Lock()
				report.Skipped++
				mu.Unlock()
				return nil
			}

			incident := record.ToDomain()
			if err := j.repo.UpsertIncident(gctx, &incident); err != nil {
				return err
			}

			mu.Lock()
			report.Inserted++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("backfill aborted: %w", err)
	}

	logger.Info("backfill finished",
		"candidates", report.Candidates,
		"inserted", report.Inserted,
		"skipped", report.Skipped,
	)
	return report, nil
}

// collectCodes walks the history pages and returns the deduplicated
// incident codes from qualifying months that are not already stored.
func (j *Job) collectCodes(ctx context.Context, logger *slog.Logger, existing map[string]struct{}) []string {
	seen := make(map[string]struct{})
	var codes []string

	for page := 1; page <= j.cfg.Pages; page++ {
		body, err := j.client.HistoryPage(ctx, page)
		if err != nil {
			logger.Warn("history page fetch failed", "page", page, "error", err)
			continue
		}

		// A page yielding no listing parses to an empty slice.
		months := j.parser.Parse(body)
		found := 0
		for _, month := range months {
			if month.Year < j.cfg.CutoffYear {
				continue
			}
			for _, ref := range month.Incidents {
				if _, ok := existing[ref.Code]; ok {
					continue
				}
				if _, ok := seen[ref.Code]; ok {
					continue
				}
				seen[ref.Code] = struct{}{}
				codes = append(codes, ref.Code)
				found++
			}
		}
		logger.Debug("history page scanned", "page", page, "months", len(months), "new_codes", found)
	}

	return codes
}
