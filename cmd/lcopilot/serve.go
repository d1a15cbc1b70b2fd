package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"lcopilot-hq/lcopilot/pkg/audit"
	"lcopilot-hq/lcopilot/pkg/cli"
	"lcopilot-hq/lcopilot/pkg/rules/source"
	"lcopilot-hq/lcopilot/pkg/rules/store"
	"lcopilot-hq/lcopilot/pkg/telemetry/health"
	"lcopilot-hq/lcopilot/pkg/telemetry/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the drafts watcher and telemetry endpoints",
	Long: `Run the long-lived side of the engine: the ruleset drafts watcher, the
audit retention scheduler and the telemetry HTTP listener.

Bundles dropped into the configured drafts directory are imported as
drafts; publishing stays an explicit "rules activate" step. The
telemetry listener exposes /metrics, /health, /ready and /version.

Examples:
  # Watch the drafts directory and serve telemetry
  lcopilot serve

  # Custom config
  lcopilot serve --config /etc/lcopilot/config.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	ruleStore, err := openStore(cfg)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer closeQuietly(ruleStore)

	sink, durable, err := openAudit(cfg)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	if durable != nil {
		defer durable.Close()
	}

	ctx := cli.SetupSignalHandler()

	// Retention scheduler over the durable audit trail.
	if durable != nil {
		pruner := audit.NewPruner(durable, audit.RetentionConfig{
			RetentionDays: cfg.Audit.Retention.Days,
			PruneSchedule: cfg.Audit.Retention.Schedule,
		})
		scheduler := audit.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer scheduler.Stop()
	}

	// Drafts directory ingestion.
	errChan := make(chan error, 2)
	if cfg.Rules.DraftsDir != "" {
		importer := store.NewImporter(ruleStore, sink, logger)
		fileSource := source.NewFileSource(cfg.Rules.DraftsDir, logger)

		var watcher *source.Watcher
		if cfg.Rules.Watch {
			watcher, err = source.NewWatcher(&source.WatcherConfig{
				Path:             cfg.Rules.DraftsDir,
				DebounceInterval: cfg.Rules.DebounceInterval,
			}, logger)
			if err != nil {
				return cli.NewCommandError("serve", err)
			}
		}

		autoImporter := source.NewAutoImporter(fileSource, importer, watcher, logger)
		go func() {
			if err := autoImporter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errChan <- fmt.Errorf("drafts ingestion: %w", err)
			}
		}()
		logger.Info("drafts ingestion started",
			"dir", cfg.Rules.DraftsDir,
			"watch", cfg.Rules.Watch,
		)
	}

	// Telemetry listener.
	var srv *http.Server
	if cfg.Telemetry.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		metrics.NewValidationMetrics(
			cfg.Telemetry.Metrics.Namespace,
			cfg.Telemetry.Metrics.Subsystem,
			registry,
		)

		checker := health.New(0)
		checker.Register("rule_store", func(ctx context.Context) error {
			_, err := ruleStore.ListRulesets(ctx)
			return err
		})
		if durable != nil {
			checker.Register("audit", func(ctx context.Context) error {
				_, err := durable.Query(ctx, time.Now().Add(-time.Minute), 1)
				return err
			})
		}

		mux := http.NewServeMux()
		mux.Handle(cfg.Telemetry.Metrics.Path, metrics.Handler(registry))
		health.Mount(mux, checker, Version, GitCommit)

		srv = &http.Server{
			Addr:              cfg.Telemetry.Metrics.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("telemetry listener started",
				"address", cfg.Telemetry.Metrics.ListenAddress,
				"path", cfg.Telemetry.Metrics.Path,
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("telemetry listener: %w", err)
			}
		}()
	}

	fmt.Println("lcopilot serve running, press Ctrl+C to stop")

	select {
	case err := <-errChan:
		return cli.NewCommandError("serve", err)
	case <-ctx.Done():
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return cli.NewCommandError("serve", err)
		}
	}

	fmt.Println("✓ Stopped")
	return nil
}
