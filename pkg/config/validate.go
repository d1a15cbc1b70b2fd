package config

import "fmt"

// Validate checks the configuration for inconsistencies. It assumes
// defaults have been applied.
func Validate(cfg *Config) error {
	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q (want debug, info, warn or error)", cfg.Telemetry.Logging.Level)
	}

	switch cfg.Telemetry.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format %q (want json or text)", cfg.Telemetry.Logging.Format)
	}

	switch cfg.Store.Backend {
	case StoreBackendSQLite:
		if cfg.Store.SQLite.Path == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite backend")
		}
	case StoreBackendMemory:
	default:
		return fmt.Errorf("invalid store backend %q (want sqlite or memory)", cfg.Store.Backend)
	}

	if cfg.Audit.Enabled && cfg.Audit.Path == "" {
		return fmt.Errorf("audit.path is required when audit is enabled")
	}
	if cfg.Audit.Retention.Days < 0 {
		return fmt.Errorf("audit.retention.days cannot be negative")
	}

	switch cfg.Semantic.Provider {
	case SemanticProviderFuzzy:
	case SemanticProviderOpenAI:
		if cfg.Semantic.OpenAI.APIKey == "" {
			return fmt.Errorf("semantic.openai.api_key is required for the openai provider")
		}
	default:
		return fmt.Errorf("invalid semantic provider %q (want openai or fuzzy)", cfg.Semantic.Provider)
	}

	if cfg.Semantic.Threshold <= 0 || cfg.Semantic.Threshold > 1 {
		return fmt.Errorf("semantic.threshold must be in (0, 1], got %v", cfg.Semantic.Threshold)
	}

	if cfg.Validation.AmountTolerance < 0 {
		return fmt.Errorf("validation.amount_tolerance cannot be negative")
	}

	return nil
}
