package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/YorHaaa/ATAI/internal/config"
	"github.com/YorHaaa/ATAI/internal/logging"
	"github.com/YorHaaa/ATAI/pkg/kgqa"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Replace the libsql database contents with the graph and crowd files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if batch, _ := cmd.Flags().GetInt("batch-size"); batch > 0 {
				cfg.Store.BatchSize = batch
			}
			if cfg.Data.GraphPath == "" {
				return fmt.Errorf("no graph file configured")
			}
			kc := kgqa.FromConfig(cfg)
			kc.Backend = config.BackendLibSQL
			stats, err := kgqa.IngestFiles(cmd.Context(), kc)
			if err != nil {
				return err
			}
			logging.Info().Int("triples", stats.Triples).Int("votes", stats.Votes).Msg("Ingest complete")
			return printJSON(stats)
		},
	}
	cmd.Flags().Int("batch-size", 0, "Rows per ingest progress step (default from config)")
	return cmd
}

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <entity> [relation]",
		Short: "Answer a question from its entity and relation mentions",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			relation := ""
			if len(args) == 2 {
				relation = args[1]
			}
			skipCrowd, _ := cmd.Flags().GetBool("skip-crowd")
			factualOnly, _ := cmd.Flags().GetBool("factual-only")
			ans, err := svc.Ask(cmd.Context(), args[0], relation, kgqa.AskOptions{
				SkipCrowd:   skipCrowd,
				FactualOnly: factualOnly,
			})
			if err != nil {
				return err
			}
			return printJSON(ans)
		},
	}
	cmd.Flags().Bool("skip-crowd", false, "Ignore crowd votes")
	cmd.Flags().Bool("factual-only", false, "Disable the embedding fallback")
	return cmd
}

func newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend <movie>...",
		Short: "Recommend movies similar to the given titles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			topK, _ := cmd.Flags().GetInt("top-k")
			movies, err := svc.Recommend(args, topK)
			if err != nil {
				return err
			}
			return printJSON(movies)
		},
	}
	cmd.Flags().Int("top-k", 0, "Number of recommendations (default from config)")
	return cmd
}
