package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"marketcolor/internal/di"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the history memo",
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored history memo as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), nil))

		store, closeStore, err := di.NewHistoryStore(cfg.History, log)
		if err != nil {
			return err
		}
		if closeStore != nil {
			defer func() { _ = closeStore() }()
		}

		record := store.Load(cmd.Context())
		if record.Headlines == nil {
			record.Headlines = []string{}
		}
		if record.Tickers == nil {
			record.Tickers = []string{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("encode history: %w", err)
		}
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}
