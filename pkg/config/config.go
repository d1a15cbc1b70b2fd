package config

import "time"

// Config is the root configuration.
type Config struct {
	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Store configures the rule store backend.
	Store StoreConfig `yaml:"store"`

	// Audit configures the audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Semantic configures the semantic comparator.
	Semantic SemanticConfig `yaml:"semantic"`

	// Rules configures draft bundle ingestion.
	Rules RulesConfig `yaml:"rules"`

	// Validation tunes the evaluator.
	Validation ValidationConfig `yaml:"validation"`
}

// TelemetryConfig groups observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address the metrics HTTP server binds to.
	ListenAddress string `yaml:"listen_address"`

	// Path is the scrape path.
	Path string `yaml:"path"`

	// Namespace and Subsystem prefix every metric name.
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`
}

// StoreConfig configures the rule store.
type StoreConfig struct {
	// Backend selects the storage backend: "sqlite" or "memory".
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteStoreConfig `yaml:"sqlite"`
}

// SQLiteStoreConfig configures the SQLite rule store. WAL mode is
// always enabled; the engine serves reads while imports run.
type SQLiteStoreConfig struct {
	Path         string        `yaml:"path"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

// AuditConfig configures the durable audit trail.
type AuditConfig struct {
	// Enabled turns audit persistence on. Disabled, events are
	// discarded.
	Enabled bool `yaml:"enabled"`

	// Path is the audit database file.
	Path string `yaml:"path"`

	// BusyTimeout is the SQLite lock wait.
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// Retention controls pruning of old events.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls audit event retention.
type RetentionConfig struct {
	// Days is how long events are kept. Zero keeps them forever.
	Days int `yaml:"days"`

	// Schedule is the cron expression for automatic pruning.
	Schedule string `yaml:"schedule"`
}

// SemanticConfig configures semantic comparison.
type SemanticConfig struct {
	// Provider selects the comparator: "openai" or "fuzzy".
	Provider string `yaml:"provider"`

	// Threshold is the default similarity cutoff in (0,1].
	Threshold float64 `yaml:"threshold"`

	// CacheTTL is how long verdicts are memoized.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// OpenAI configures the AI provider.
	OpenAI OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig configures the OpenAI-backed comparator.
type OpenAIConfig struct {
	// APIKey is the provider credential. Usually supplied via
	// LCOPILOT_SEMANTIC_OPENAI_API_KEY rather than the config file.
	APIKey string `yaml:"api_key"`

	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single comparison call.
	Timeout time.Duration `yaml:"timeout"`

	// RequestsPerSecond and Burst throttle outbound calls.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// RulesConfig configures draft bundle ingestion.
type RulesConfig struct {
	// DraftsDir is the directory watched for ruleset bundles. Empty
	// disables ingestion.
	DraftsDir string `yaml:"drafts_dir"`

	// Watch enables the fsnotify watcher on the drafts directory.
	Watch bool `yaml:"watch"`

	// DebounceInterval is the watcher quiet period.
	DebounceInterval time.Duration `yaml:"debounce_interval"`
}

// ValidationConfig tunes rule evaluation.
type ValidationConfig struct {
	// AmountTolerance is the absolute tolerance for numeric equality,
	// absorbing rounding noise in extracted amounts.
	AmountTolerance float64 `yaml:"amount_tolerance"`
}
