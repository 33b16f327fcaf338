package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jaume/remotejobs/internal/ingest"
)

var scrapeSource string

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one ingestion pass and exit",
	Long:  "Fetches every enabled source once, stores the results, and prints a per-source report.",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeSource, "source", "", "scrape only the named source")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	scrapers, err := buildScrapers(cfg, scrapeSource, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := ingest.NewRunner(scrapers, st, cfg.FetchTimeout, logger)
	reports := runner.Run(ctx)

	fmt.Printf("%-18s %8s %6s %8s  %s\n", "Source", "Found", "New", "Updated", "Status")
	failed := 0
	for _, rep := range reports {
		status := "ok"
		if rep.Err != nil {
			status = rep.Err.Error()
			failed++
		}
		fmt.Printf("%-18s %8d %6d %8d  %s\n", rep.Source, rep.Found, rep.New, rep.Updated, status)
	}

	if failed == len(reports) && len(reports) > 0 {
		fmt.Fprintln(os.Stderr, "all sources failed")
		os.Exit(1)
	}
	return nil
}
