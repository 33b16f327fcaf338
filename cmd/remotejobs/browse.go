package main

import (
	"github.com/spf13/cobra"

	"github.com/jaume/remotejobs/internal/browse"
	"github.com/jaume/remotejobs/internal/store"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored jobs interactively",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
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

	q := store.DefaultJobQuery()
	q.Limit = 2000

	jobs, err := st.Jobs(q)
	if err != nil {
		return err
	}

	return browse.Run(jobs)
}
