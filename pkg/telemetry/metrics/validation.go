package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ValidationMetrics tracks rule resolution and evaluation. Metric names
// carry the configured namespace and subsystem prefix:
//
//   - rule_evaluations_total: rule evaluations by rule and status
//   - validation_duration_seconds: end-to-end validation duration
//   - semantic_comparisons_total: semantic comparisons by verdict source
//   - ruleset_load_failures_total: fail-closed ruleset load failures
//   - ruleset_imports_total: ruleset imports by mode
type ValidationMetrics struct {
	evaluationsTotal    *prometheus.CounterVec
	validationDuration  *prometheus.HistogramVec
	semanticComparisons *prometheus.CounterVec
	loadFailures        *prometheus.CounterVec
	importsTotal        *prometheus.CounterVec
}

// NewValidationMetrics creates and registers validation metrics with the
// provided registry.
func NewValidationMetrics(namespace, subsystem string, registry *prometheus.Registry) *ValidationMetrics {
	vm := &ValidationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"rule_id", "status"},
		),

		validationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "validation_duration_seconds",
				Help:      "Duration of a full validation run in seconds",
				// Deterministic runs finish in milliseconds; AI-backed
				// semantic runs can take tens of seconds.
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4.5min
			},
			[]string{"domain"},
		),

		semanticComparisons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "semantic_comparisons_total",
				Help:      "Total number of semantic comparisons by verdict source",
			},
			[]string{"source"},
		),

		loadFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "ruleset_load_failures_total",
				Help:      "Total number of fail-closed ruleset load failures",
			},
			[]string{"domain"},
		),

		importsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "ruleset_imports_total",
				Help:      "Total number of ruleset imports by mode",
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(
		vm.evaluationsTotal,
		vm.validationDuration,
		vm.semanticComparisons,
		vm.loadFailures,
		vm.importsTotal,
	)

	return vm
}

// RecordEvaluation records one rule evaluation outcome.
func (vm *ValidationMetrics) RecordEvaluation(ruleID, status string) {
	vm.evaluationsTotal.WithLabelValues(ruleID, status).Inc()
}

// RecordValidation records the duration of a full validation run for the
// primary domain.
func (vm *ValidationMetrics) RecordValidation(domain string, duration time.Duration) {
	vm.validationDuration.WithLabelValues(domain).Observe(duration.Seconds())
}

// RecordSemanticComparison records a semantic comparison by verdict
// source ("ai", "fuzzy", "cache").
func (vm *ValidationMetrics) RecordSemanticComparison(source string) {
	vm.semanticComparisons.WithLabelValues(source).Inc()
}

// RecordLoadFailure records a fail-closed ruleset load failure.
func (vm *ValidationMetrics) RecordLoadFailure(domain string) {
	vm.loadFailures.WithLabelValues(domain).Inc()
}

// RecordImport records a ruleset import by mode ("draft", "activate").
func (vm *ValidationMetrics) RecordImport(mode string) {
	vm.importsTotal.WithLabelValues(mode).Inc()
}
