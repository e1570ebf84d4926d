package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newspulse/newspulse/internal/news"
	"github.com/newspulse/newspulse/internal/pipeline"
)

// newFetchCmd creates the 'fetch' subcommand for one-shot pipeline runs.
func newFetchCmd() *cobra.Command {
	var (
		query       string
		period      string
		minArticles int
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one pipeline pass and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			svc, cleanup, err := buildService(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Run(cmd.Context(), pipeline.Request{
				Query:       query,
				Period:      news.Period(period),
				MinArticles: minArticles,
			})
			if err != nil {
				return fmt.Errorf("pipeline run: %w", err)
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal result: %w", err)
			}
			cmd.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "user query (empty for the default term set)")
	cmd.Flags().StringVar(&period, "period", "1d", "recency window (1h, 1d, 2d, 3d, 7d)")
	cmd.Flags().IntVar(&minArticles, "min-articles", 0, "article cap (0 for the configured default)")
	return cmd
}
