package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"scholarhub/internal/config"
	"scholarhub/internal/reliability"
	"scholarhub/internal/sources"
)

var (
	searchMaxResults int
	searchJSON       bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a one-off federated search from the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchMaxResults, "max-results", "n", 0, "maximum results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print results as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logger, err = buildLogger(cfg.Logging, verbose); err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}

	query := strings.Join(args, " ")
	maxResults := cfg.Search.DefaultMaxResults
	if searchMaxResults > 0 {
		maxResults = searchMaxResults
	}

	scorer := reliability.NewScorer(cfg.Reliability)
	aggregator := sources.NewDefaultAggregator(logger, scorer, sources.FederationConfig{
		Timeout:               cfg.SearchTimeout(),
		SemanticScholarAPIKey: cfg.Search.SemanticScholarAPIKey,
		CrossrefMailto:        cfg.Search.CrossrefMailto,
		DisabledSources:       cfg.Search.DisabledSources,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.SearchTimeout())
	defer cancel()

	results, err := aggregator.Search(ctx, query, maxResults)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%2d. %s\n", i+1, r.Title)
		fmt.Printf("    %s", r.Source)
		if r.Year > 0 {
			fmt.Printf(" (%d)", r.Year)
		}
		if r.Citations > 0 {
			fmt.Printf(", %d citations", r.Citations)
		}
		fmt.Printf(", reliability %.2f (%s)\n", r.ReliabilityScore, r.ReliabilityLevel)
		if len(r.Authors) > 0 {
			fmt.Printf("    %s\n", strings.Join(r.Authors, ", "))
		}
		if r.URL != "" {
			fmt.Printf("    %s\n", r.URL)
		}
		fmt.Println()
	}
	return nil
}
