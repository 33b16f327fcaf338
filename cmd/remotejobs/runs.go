package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show the scrape run log",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum rows")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
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

	runs, err := st.Runs(runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	fmt.Printf("%-5s %-16s %-20s %-9s %6s %5s %8s  %s\n",
		"ID", "Source", "Started", "Duration", "Found", "New", "Updated", "Status")
	fmt.Println(strings.Repeat("─", 95))
	for _, run := range runs {
		duration := "-"
		if run.FinishedAt != nil {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
		}
		status := string(run.Status)
		if run.Error != "" {
			status += ": " + truncate(run.Error, 40)
		}
		fmt.Printf("%-5d %-16s %-20s %-9s %6d %5d %8d  %s\n",
			run.ID, run.Source, run.StartedAt.Local().Format(time.DateTime),
			duration, run.Found, run.New, run.Updated, status)
	}
	return nil
}
