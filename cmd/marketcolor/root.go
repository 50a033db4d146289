package main

import (
	"context"

	"github.com/spf13/cobra"

	"marketcolor/internal/infra/config"
)

var (
	policyPath  string
	historyPath string
)

var rootCmd = &cobra.Command{
	Use:   "marketcolor",
	Short: "Daily market briefing job",
	Long: `marketcolor plans news searches, retrieves and curates candidate stories,
verifies risky claims, synthesizes a briefing and delivers it to Telegram.

Example usage:
  marketcolor run                      # Run once and deliver
  marketcolor run --dry-run            # Print the briefing instead of sending it
  marketcolor history show             # Print the stored history memo
  marketcolor policy show              # Print the effective curation policy`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "policy YAML file (default is the embedded policy)")
	rootCmd.PersistentFlags().StringVar(&historyPath, "history", "", "history file path (forces the file backend)")
}

// loadConfig reads the environment and applies the persistent flags on top.
func loadConfig() *config.Config {
	cfg := config.Load()
	if policyPath != "" {
		cfg.PolicyPath = policyPath
	}
	if historyPath != "" {
		cfg.History.Backend = config.HistoryBackendFile
		cfg.History.Path = historyPath
	}
	return cfg
}
