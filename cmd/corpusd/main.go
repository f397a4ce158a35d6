// Package main is the entry point for the corpusd CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pondside/corpus/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpusd",
		Short: "Corpus ingestion and semantic retrieval server",
		Long:  `corpusd ingests documents into paragraph-level snippets, embeds them through an external model, and answers similarity queries over the stored vectors.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from a .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
