package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies LCOPILOT_* environment variable overrides on top. Environment
// variables always win over file values.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides using the
// LCOPILOT_SECTION_FIELD convention.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("LCOPILOT_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("LCOPILOT_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("LCOPILOT_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("LCOPILOT_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}

	if val := os.Getenv("LCOPILOT_STORE_BACKEND"); val != "" {
		cfg.Store.Backend = val
	}
	if val := os.Getenv("LCOPILOT_STORE_SQLITE_PATH"); val != "" {
		cfg.Store.SQLite.Path = val
	}
	if val := os.Getenv("LCOPILOT_STORE_SQLITE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Store.SQLite.BusyTimeout = d
		}
	}

	if val := os.Getenv("LCOPILOT_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("LCOPILOT_AUDIT_PATH"); val != "" {
		cfg.Audit.Path = val
	}
	if val := os.Getenv("LCOPILOT_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.Days = i
		}
	}
	if val := os.Getenv("LCOPILOT_AUDIT_RETENTION_SCHEDULE"); val != "" {
		cfg.Audit.Retention.Schedule = val
	}

	if val := os.Getenv("LCOPILOT_SEMANTIC_PROVIDER"); val != "" {
		cfg.Semantic.Provider = val
	}
	if val := os.Getenv("LCOPILOT_SEMANTIC_THRESHOLD"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Semantic.Threshold = f
		}
	}
	if val := os.Getenv("LCOPILOT_SEMANTIC_OPENAI_API_KEY"); val != "" {
		cfg.Semantic.OpenAI.APIKey = val
	}
	if val := os.Getenv("LCOPILOT_SEMANTIC_OPENAI_MODEL"); val != "" {
		cfg.Semantic.OpenAI.Model = val
	}
	if val := os.Getenv("LCOPILOT_SEMANTIC_OPENAI_BASE_URL"); val != "" {
		cfg.Semantic.OpenAI.BaseURL = val
	}
	if val := os.Getenv("LCOPILOT_SEMANTIC_OPENAI_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Semantic.OpenAI.Timeout = d
		}
	}

	if val := os.Getenv("LCOPILOT_RULES_DRAFTS_DIR"); val != "" {
		cfg.Rules.DraftsDir = val
	}
	if val := os.Getenv("LCOPILOT_RULES_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Rules.Watch = b
		}
	}

	if val := os.Getenv("LCOPILOT_VALIDATION_AMOUNT_TOLERANCE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Validation.AmountTolerance = f
		}
	}
}
