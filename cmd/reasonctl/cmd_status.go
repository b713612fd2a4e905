package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// statusCmd reports the kernel's fact count, proof cache size and hit
// rate, and per-prover performance records.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show knowledge base size, proof cache, and prover performance",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	stats := k.Stats()
	fmt.Printf("facts: %d\n", stats.Facts)
	fmt.Printf("proof cache: %d entries, %.1f%% hit rate\n", stats.CacheSize, stats.CacheHitRate*100)

	names := make([]string, 0, len(stats.PortfolioStats))
	for name := range stats.PortfolioStats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("provers:")
	for _, name := range names {
		rec := stats.PortfolioStats[name]
		fmt.Printf("  %-28s success=%.2f avg_duration=%.3fs calls=%d\n",
			name, rec.SuccessRate, rec.AvgDuration, rec.Count)
	}
	return nil
}
