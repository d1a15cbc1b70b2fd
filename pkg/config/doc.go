// Package config defines the engine configuration: rule storage, audit
// trail, semantic comparison, draft ingestion and telemetry.
//
// Configuration is loaded from a YAML file, defaulted, optionally
// overridden from LCOPILOT_* environment variables, and validated
// before anything starts. A zero-value Config with defaults applied is
// a working embedded setup: in-memory store, fuzzy comparator, no
// audit persistence.
package config
