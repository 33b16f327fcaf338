package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print database statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	stats, err := st.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Active jobs:     %d\n", stats.TotalJobs)
	fmt.Printf("No-phone jobs:   %d\n", stats.NoPhoneJobs)
	fmt.Printf("With salary:     %d\n", stats.WithSalary)

	fmt.Println("\nBy source:")
	for _, name := range sortedKeys(stats.BySource) {
		line := fmt.Sprintf("  %-16s %d", name, stats.BySource[name])
		if last, ok := stats.LastScrape[name]; ok {
			line += fmt.Sprintf("  (last scrape %s)", last.Local().Format(time.DateTime))
		}
		fmt.Println(line)
	}

	fmt.Println("\nBy category:")
	for _, name := range sortedKeys(stats.ByCategory) {
		fmt.Printf("  %-16s %d\n", name, stats.ByCategory[name])
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
