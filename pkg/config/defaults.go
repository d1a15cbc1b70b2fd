package config

import "time"

// Backend and provider names.
const (
	StoreBackendSQLite = "sqlite"
	StoreBackendMemory = "memory"

	SemanticProviderOpenAI = "openai"
	SemanticProviderFuzzy  = "fuzzy"
)

// ApplyDefaults fills every unset field with its default value.
func ApplyDefaults(cfg *Config) {
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = "info"
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = "json"
	}

	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = "127.0.0.1:9464"
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = "/metrics"
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = "lcopilot"
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = "rules"
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = StoreBackendSQLite
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = "data/rules.db"
	}
	if cfg.Store.SQLite.MaxOpenConns == 0 {
		cfg.Store.SQLite.MaxOpenConns = 10
	}
	if cfg.Store.SQLite.MaxIdleConns == 0 {
		cfg.Store.SQLite.MaxIdleConns = 5
	}
	if cfg.Store.SQLite.BusyTimeout == 0 {
		cfg.Store.SQLite.BusyTimeout = 5 * time.Second
	}

	if cfg.Audit.Path == "" {
		cfg.Audit.Path = "data/audit.db"
	}
	if cfg.Audit.BusyTimeout == 0 {
		cfg.Audit.BusyTimeout = 5 * time.Second
	}
	if cfg.Audit.Retention.Days == 0 {
		// Trade-finance audit trails are typically kept for years; the
		// default leans conservative rather than minimal.
		cfg.Audit.Retention.Days = 1825
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = "0 3 * * *"
	}

	if cfg.Semantic.Provider == "" {
		cfg.Semantic.Provider = SemanticProviderFuzzy
	}
	if cfg.Semantic.Threshold == 0 {
		cfg.Semantic.Threshold = 0.85
	}
	if cfg.Semantic.CacheTTL == 0 {
		cfg.Semantic.CacheTTL = time.Hour
	}
	if cfg.Semantic.OpenAI.Model == "" {
		cfg.Semantic.OpenAI.Model = "gpt-4o-mini"
	}
	if cfg.Semantic.OpenAI.Timeout == 0 {
		cfg.Semantic.OpenAI.Timeout = 20 * time.Second
	}
	if cfg.Semantic.OpenAI.RequestsPerSecond == 0 {
		cfg.Semantic.OpenAI.RequestsPerSecond = 2
	}
	if cfg.Semantic.OpenAI.Burst == 0 {
		cfg.Semantic.OpenAI.Burst = 4
	}

	if cfg.Rules.DebounceInterval == 0 {
		cfg.Rules.DebounceInterval = 500 * time.Millisecond
	}

	if cfg.Validation.AmountTolerance == 0 {
		cfg.Validation.AmountTolerance = 0.01
	}
}

// DefaultConfig returns a fully defaulted configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
