package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"marketcolor/internal/infra/config"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect the curation policy",
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective policy as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		policy, err := config.LoadPolicy(cfg.PolicyPath)
		if err != nil {
			return err
		}
		data, err := config.MarshalPolicy(policy)
		if err != nil {
			return fmt.Errorf("encode policy: %w", err)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "# policy version %s\n", policy.Version)
		_, err = w.Write(data)
		return err
	},
}

func init() {
	policyCmd.AddCommand(policyShowCmd)
	rootCmd.AddCommand(policyCmd)
}
