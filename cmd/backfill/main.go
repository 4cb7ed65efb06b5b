// Command backfill reconstructs incident history from the upstream
// feed's paginated listing pages. It is a one-shot job: run it once
// against an initialized database, rerun any time to fill gaps.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/danscan/githubdownfall.com/internal/backfill"
	"github.com/danscan/githubdownfall.com/internal/config"
	"github.com/danscan/githubdownfall.com/internal/pkg/postgres"
	storepostgres "github.com/danscan/githubdownfall.com/internal/store/postgres"
	"github.com/danscan/githubdownfall.com/internal/upstream"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer db.Close()

	if err := storepostgres.Migrate(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	job := backfill.NewJob(
		backfill.Config{
			Pages:      cfg.Backfill.Pages,
			CutoffYear: cfg.Backfill.CutoffYear,
			BatchWidth: cfg.Backfill.BatchWidth,
		},
		upstream.NewClient(upstream.Config{
			BaseURL:           cfg.Upstream.BaseURL,
			RequestsPerSecond: cfg.Upstream.RequestsPerSecond,
			Burst:             cfg.Upstream.Burst,
		}),
		storepostgres.NewRepository(db),
		upstream.EmbeddedJSONParser{},
	)

	report, err := job.Run(ctx)
	if err != nil {
		log.Fatalf("backfill: %v", err)
	}

	fmt.Printf("backfill %s: %d candidates, %d inserted, %d skipped across %d pages\n",
		report.RunID, report.Candidates, report.Inserted, report.Skipped, report.Pages)
}
