package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"marketcolor/internal/di"
	"marketcolor/internal/domain"
	"marketcolor/internal/infra/config"
	"marketcolor/internal/infra/logger"
	"marketcolor/internal/infra/metrics"
	appotel "marketcolor/internal/infra/otel"
)

const shutdownTimeout = 5 * time.Second

var (
	runDryRun       bool
	runWriteHistory bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Produce and deliver one briefing",
	Long: `Run the whole pipeline once: plan, retrieve, curate, verify, synthesize,
update the history memo and deliver.

With --dry-run the briefing is printed instead of sent and the history memo
is left untouched unless --write-history is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBriefing(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the briefing instead of delivering it")
	runCmd.Flags().BoolVar(&runWriteHistory, "write-history", false, "update the history memo during a dry run")
	rootCmd.AddCommand(runCmd)
}

func runBriefing(ctx context.Context, stdout io.Writer) error {
	cfg := loadConfig()
	if runDryRun {
		cfg.DryRun = true
	}

	log := logger.New()
	// Credentials are checked before anything touches the network or the
	// history memo.
	if err := cfg.Validate(); err != nil {
		var missing *domain.MissingCredentialsError
		if errors.As(err, &missing) {
			log.Error("missing_credentials", slog.Any("keys", missing.Keys))
		}
		return err
	}

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		log.Error("policy_load_failed", slog.String("error", err.Error()))
		return err
	}

	shutdown, err := appotel.InitProvider(ctx, appotel.Config{
		ServiceName:    "marketcolor",
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Environment:    cfg.Telemetry.DeploymentEnv,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.OTelEnabled,
		SampleRatio:    cfg.Telemetry.TraceSampleRate,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("telemetry_shutdown_failed", slog.String("error", err.Error()))
		}
	}()

	log = logger.NewWithOTel(cfg.Telemetry.OTelEnabled)
	slog.SetDefault(log)

	components, err := di.NewApplicationComponents(cfg, policy, di.Options{
		DryRun:      cfg.DryRun,
		SaveHistory: !cfg.DryRun || runWriteHistory,
		Stdout:      stdout,
	}, log)
	if err != nil {
		return fmt.Errorf("wire components: %w", err)
	}
	defer func() { _ = components.Close() }()

	out, runErr := components.Pipeline.Execute(ctx)

	runID := ""
	if out != nil {
		runID = out.RunID
	}
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := metrics.Push(pushCtx, cfg.Telemetry.PushgatewayURL, cfg.Telemetry.MetricsJobName, runID); err != nil {
		log.Warn("metrics_push_failed", slog.String("error", err.Error()))
	}
	return runErr
}
