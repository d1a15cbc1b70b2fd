package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"lcopilot-hq/lcopilot/pkg/audit"
	"lcopilot-hq/lcopilot/pkg/config"
	"lcopilot-hq/lcopilot/pkg/rules/engine"
	"lcopilot-hq/lcopilot/pkg/rules/loader"
	"lcopilot-hq/lcopilot/pkg/rules/router"
	"lcopilot-hq/lcopilot/pkg/rules/semantic"
	"lcopilot-hq/lcopilot/pkg/rules/store"
	"lcopilot-hq/lcopilot/pkg/telemetry/logging"
	"lcopilot-hq/lcopilot/pkg/telemetry/metrics"
)

// loadConfig loads the config file, applies environment overrides and
// installs the process logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Telemetry.Logging)
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

// openStore opens the configured rule store backend.
func openStore(cfg *config.Config) (store.Admin, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendSQLite:
		return store.NewSQLiteStore(&store.SQLiteConfig{
			Path:         cfg.Store.SQLite.Path,
			MaxOpenConns: cfg.Store.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Store.SQLite.MaxIdleConns,
			WALMode:      true,
			BusyTimeout:  cfg.Store.SQLite.BusyTimeout,
		})
	case config.StoreBackendMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}
}

// openAudit opens the audit sink. Disabled audit yields a NopSink and a
// nil durable sink.
func openAudit(cfg *config.Config) (audit.Sink, *audit.SQLiteSink, error) {
	if !cfg.Audit.Enabled {
		return audit.NopSink{}, nil, nil
	}

	durable, err := audit.NewSQLiteSink(audit.SQLiteSinkConfig{
		Path:        cfg.Audit.Path,
		BusyTimeout: cfg.Audit.BusyTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return durable, durable, nil
}

// newComparator builds the semantic comparator chain: the configured
// provider wrapped in the verdict cache.
func newComparator(cfg *config.Config) (semantic.Comparator, error) {
	var inner semantic.Comparator
	switch cfg.Semantic.Provider {
	case config.SemanticProviderOpenAI:
		comparator, err := semantic.NewOpenAIComparator(semantic.OpenAIConfig{
			APIKey:            cfg.Semantic.OpenAI.APIKey,
			Model:             cfg.Semantic.OpenAI.Model,
			BaseURL:           cfg.Semantic.OpenAI.BaseURL,
			Timeout:           cfg.Semantic.OpenAI.Timeout,
			RequestsPerSecond: cfg.Semantic.OpenAI.RequestsPerSecond,
			Burst:             cfg.Semantic.OpenAI.Burst,
			Threshold:         cfg.Semantic.Threshold,
		})
		if err != nil {
			return nil, err
		}
		inner = comparator
	case config.SemanticProviderFuzzy:
		inner = semantic.NewFallbackComparator(cfg.Semantic.Threshold)
	default:
		return nil, fmt.Errorf("unsupported semantic provider: %s", cfg.Semantic.Provider)
	}

	return semantic.NewCachingComparator(inner, cfg.Semantic.CacheTTL), nil
}

// newEngine assembles the validation engine over an opened store and
// audit sink.
func newEngine(cfg *config.Config, s store.Store, sink audit.Sink, registry *prometheus.Registry, logger *slog.Logger) (*engine.Engine, error) {
	comparator, err := newComparator(cfg)
	if err != nil {
		return nil, err
	}

	vm := metrics.NewValidationMetrics(
		cfg.Telemetry.Metrics.Namespace,
		cfg.Telemetry.Metrics.Subsystem,
		registry,
	)

	evaluator := engine.NewEvaluator(cfg.Validation.AmountTolerance, logger)
	injector := semantic.NewInjector(comparator, logger)
	executor := engine.NewExecutor(evaluator, injector, sink, vm, logger)

	return engine.New(
		router.New(router.DefaultTable(), logger),
		loader.New(s, logger),
		executor,
		vm,
		logger,
	), nil
}
