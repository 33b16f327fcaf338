package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaume/remotejobs/internal/model"
	"github.com/jaume/remotejobs/internal/store"
)

var listFlags struct {
	category  string
	source    string
	noPhone   bool
	hasSalary bool
	all       bool
	limit     int
	offset    int
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored jobs",
	Long:  "Prints stored jobs, most recently scraped first. Filters combine with AND.",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listFlags.category, "category", "", "filter by category")
	listCmd.Flags().StringVar(&listFlags.source, "source", "", "filter by source")
	listCmd.Flags().BoolVar(&listFlags.noPhone, "no-phone", false, "only phone-free jobs")
	listCmd.Flags().BoolVar(&listFlags.hasSalary, "has-salary", false, "only jobs with salary data")
	listCmd.Flags().BoolVar(&listFlags.all, "all", false, "include inactive jobs")
	listCmd.Flags().IntVar(&listFlags.limit, "limit", 50, "maximum rows")
	listCmd.Flags().IntVar(&listFlags.offset, "offset", 0, "rows to skip")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
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
	q.Category = model.Category(listFlags.category)
	q.Source = listFlags.source
	q.NoPhoneOnly = listFlags.noPhone
	q.HasSalary = listFlags.hasSalary
	q.ActiveOnly = !listFlags.all
	q.Limit = listFlags.limit
	q.Offset = listFlags.offset

	jobs, err := st.Jobs(q)
	if err != nil {
		return err
	}

	printJobTable(jobs)
	return nil
}

func printJobTable(jobs []model.Job) {
	if len(jobs) == 0 {
		fmt.Println("no jobs found")
		return
	}

	fmt.Printf("%-40s %-20s %-12s %-14s %-16s %s\n", "Title", "Company", "Category", "Source", "Salary", "URL")
	fmt.Println(strings.Repeat("─", 120))
	for _, job := range jobs {
		fmt.Printf("%-40s %-20s %-12s %-14s %-16s %s\n",
			truncate(job.Title, 40),
			truncate(job.Company, 20),
			job.Category,
			job.Source,
			salaryColumn(job),
			job.URL,
		)
	}
	fmt.Printf("\n%d jobs\n", len(jobs))
}

func salaryColumn(job model.Job) string {
	if job.SalaryMin == nil {
		return "-"
	}
	if job.SalaryMax != nil && *job.SalaryMax != *job.SalaryMin {
		return fmt.Sprintf("$%d-$%d", *job.SalaryMin, *job.SalaryMax)
	}
	return fmt.Sprintf("$%d", *job.SalaryMin)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
