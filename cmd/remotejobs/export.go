package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaume/remotejobs/internal/model"
	"github.com/jaume/remotejobs/internal/store"
)

var exportFlags struct {
	format string
	out    string
	all    bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored jobs as JSON or CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFlags.format, "format", "json", "output format: json or csv")
	exportCmd.Flags().StringVar(&exportFlags.out, "out", "", "output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportFlags.all, "all", false, "include inactive jobs")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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
	q.ActiveOnly = !exportFlags.all
	q.Limit = 100_000

	jobs, err := st.Jobs(q)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if exportFlags.out != "" {
		f, err := os.Create(exportFlags.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch exportFlags.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jobs)
	case "csv":
		return writeCSV(w, jobs)
	default:
		return fmt.Errorf("unknown format %q (want json or csv)", exportFlags.format)
	}
}

func writeCSV(w io.Writer, jobs []model.Job) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "source", "title", "company", "location", "category",
		"salary_min", "salary_max", "is_no_phone", "url", "tags", "posted_at", "scraped_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, job := range jobs {
		postedAt := ""
		if job.PostedAt != nil {
			postedAt = job.PostedAt.Format(time.RFC3339)
		}
		record := []string{
			job.ID, job.Source, job.Title, job.Company, job.Location, string(job.Category),
			intField(job.SalaryMin), intField(job.SalaryMax), strconv.FormatBool(job.IsNoPhone),
			job.URL, strings.Join(job.Tags, ";"), postedAt, job.ScrapedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func intField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
