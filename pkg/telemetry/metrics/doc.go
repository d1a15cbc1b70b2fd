// Package metrics exposes Prometheus metrics for rule resolution,
// evaluation and ruleset governance.
//
// Everything registers against an explicit *prometheus.Registry so
// tests can assert on counters without touching process-global state.
// The serve command mounts the scrape handler from this package on its
// telemetry listener.
package metrics
