package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jaume/remotejobs/internal/httpapi"
	"github.com/jaume/remotejobs/internal/ingest"
	"github.com/jaume/remotejobs/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scraping daemon",
	Long:  "Runs ingestion passes on the configured interval; blocks until SIGINT/SIGTERM. Serves the HTTP API as well when api.enabled is set.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"interval", cfg.ScrapeInterval.String(),
		"sources", len(cfg.Sources),
		"db", cfg.DBPath,
		"api", cfg.API.Enabled,
	)

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	scrapers, err := buildScrapers(cfg, "", logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := ingest.NewRunner(scrapers, st, cfg.FetchTimeout, logger)
	sched := scheduler.New(runner, cfg.ScrapeInterval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })
	if cfg.API.Enabled {
		api := httpapi.New(st, cfg.API.Addr, logger)
		g.Go(func() error { return api.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("goodbye")
	return nil
}
