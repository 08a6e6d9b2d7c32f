// Command atai serves movie questions, crowd consensus and recommendations
// over MCP and REST, and manages the libsql copy of the data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/YorHaaa/ATAI/internal/buildinfo"
	"github.com/YorHaaa/ATAI/internal/config"
	"github.com/YorHaaa/ATAI/internal/logging"
	"github.com/YorHaaa/ATAI/pkg/kgqa"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "atai",
		Short: "Movie knowledge graph question answering",
		Long: `atai answers factual questions about movies from a Wikidata-style
knowledge graph, falls back to TransE embeddings when the graph has no
answer, aggregates crowd-sourced corrections and recommends similar movies.`,
		SilenceUsage: true,
	}
	f := rootCmd.PersistentFlags()
	f.String("graph", "", "Knowledge graph file (N-Triples or Turtle)")
	f.String("crowd", "", "Crowd votes TSV file")
	f.String("backend", "", "Store backend: memory or libsql")
	f.String("libsql-url", "", "libSQL database URL (default: file:./atai.db)")
	f.String("auth-token", "", "Authentication token for remote databases")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s", buildinfo.Name, buildinfo.Version)
			if buildinfo.Revision != "" {
				fmt.Printf(" (%s %s)", buildinfo.Revision, buildinfo.BuildDate)
			}
			fmt.Println()
		},
	})
	rootCmd.AddCommand(newServeCmd(), newIngestCmd(), newAskCmd(), newRecommendCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the layered configuration, applies explicitly set
// command line flags on top and configures logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	override := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	override("graph", &cfg.Data.GraphPath)
	override("crowd", &cfg.Data.CrowdPath)
	override("backend", &cfg.Store.Backend)
	override("libsql-url", &cfg.Store.URL)
	override("auth-token", &cfg.Store.AuthToken)
	if flags.Lookup("transport") != nil {
		override("transport", &cfg.Server.Transport)
		override("addr", &cfg.Server.Addr)
		override("sse-endpoint", &cfg.Server.SSEEndpoint)
		override("http-addr", &cfg.Server.HTTPAddr)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return cfg, nil
}

func openService(cmd *cobra.Command) (*kgqa.Service, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	svc, err := kgqa.NewService(cmd.Context(), kgqa.FromConfig(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start service: %w", err)
	}
	return svc, cfg, nil
}
