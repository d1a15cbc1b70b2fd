// Package telemetry groups the observability building blocks.
//
// # Components
//
//   - logging: structured slog setup with sensitive-value redaction
//   - metrics: Prometheus metrics for rule evaluation and imports
//   - health: liveness and readiness endpoints for the serve mode
//
// The metrics and health handlers are mounted on a single HTTP
// listener by the serve command; one-shot CLI invocations skip the
// listener entirely.
package telemetry
