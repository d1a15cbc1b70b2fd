package engine

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"lcopilot-hq/lcopilot/pkg/audit"
	"lcopilot-hq/lcopilot/pkg/docs"
	"lcopilot-hq/lcopilot/pkg/rules/ast"
	"lcopilot-hq/lcopilot/pkg/rules/loader"
	"lcopilot-hq/lcopilot/pkg/rules/semantic"
	"lcopilot-hq/lcopilot/pkg/telemetry/metrics"
)

// Executor runs loaded rules against a document context: semantic
// injection first, then deterministic evaluation, then report assembly.
type Executor struct {
	evaluator *Evaluator
	injector  *semantic.Injector
	sink      audit.Sink
	metrics   *metrics.ValidationMetrics
	logger    *slog.Logger
}

// NewExecutor creates an executor. Sink and metrics may be nil.
func NewExecutor(evaluator *Evaluator, injector *semantic.Injector, sink audit.Sink, vm *metrics.ValidationMetrics, logger *slog.Logger) *Executor {
	if evaluator == nil {
		evaluator = NewEvaluator(0, nil)
	}
	if injector == nil {
		injector = semantic.NewInjector(nil, nil)
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	if logger == nil {
		logger = slog.Default().With("component", "rules.executor")
	}
	return &Executor{
		evaluator: evaluator,
		injector:  injector,
		sink:      sink,
		metrics:   vm,
		logger:    logger,
	}
}

// Execute evaluates every loaded rule and assembles the report.
// Not-applicable rules are counted but excluded from the outcomes.
func (x *Executor) Execute(ctx context.Context, loaded *loader.Result, docctx *docs.Context) *Report {
	started := time.Now()

	plain := make([]ast.Rule, len(loaded.Rules))
	for i := range loaded.Rules {
		plain[i] = loaded.Rules[i].Rule
	}

	rewritten, verdicts := x.injector.Inject(ctx, plain, docctx)
	x.recordComparisons(verdicts)

	report := &Report{
		Status:         StatusCompliant,
		GeneratedAt:    time.Now().UTC(),
		Jurisdiction:   docctx.EffectiveJurisdiction(),
		Domains:        loaded.Domains,
		BaseMetadata:   loaded.BaseMetadata,
		Provenance:     loaded.Provenance,
		RulesEvaluated: len(rewritten),
	}

	for i := range rewritten {
		rule := &rewritten[i]
		status, conditions := x.evaluator.EvaluateRule(rule, docctx, verdicts)

		if x.metrics != nil {
			x.metrics.RecordEvaluation(rule.RuleID, string(status))
		}

		if status == StatusNotApplicable {
			continue
		}

		outcome := RuleOutcome{
			RuleID:           rule.RuleID,
			RuleVersion:      rule.RuleVersion,
			Article:          rule.Article,
			Title:            rule.Title,
			Severity:         rule.EffectiveSeverity(),
			Status:           status,
			Conditions:       conditions,
			SemanticVerdicts: ruleVerdicts(rule.RuleID, verdicts),
			ExpectedOutcome:  rule.ExpectedOutcome,
			Provenance:       loaded.Rules[i].Meta,
		}
		report.Outcomes = append(report.Outcomes, outcome)

		switch {
		case status == StatusPassed:
			report.Passed++
		case outcome.Severity == ast.SeverityFail:
			report.Failed++
			report.Status = StatusDiscrepant
		default:
			report.Warnings++
		}
	}

	if x.metrics != nil {
		x.metrics.RecordValidation(loaded.BaseMetadata.Domain, time.Since(started))
	}

	x.recordSkipped(ctx, loaded)
	x.recordAudit(ctx, report)

	x.logger.Info("rules evaluated",
		"status", report.Status,
		"evaluated", report.RulesEvaluated,
		"passed", report.Passed,
		"failed", report.Failed,
		"warnings", report.Warnings,
		"duration", time.Since(started),
	)

	return report
}

// ruleVerdicts extracts the semantic verdicts belonging to one rule,
// keyed by condition index.
func ruleVerdicts(ruleID string, verdicts semantic.Results) map[int]*semantic.Verdict {
	var out map[int]*semantic.Verdict
	prefix := ruleID + "#"
	for key, verdict := range verdicts {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		index, err := strconv.Atoi(key[len(prefix):])
		if err != nil {
			continue
		}
		if out == nil {
			out = make(map[int]*semantic.Verdict)
		}
		out[index] = verdict
	}
	return out
}

func (x *Executor) recordComparisons(verdicts semantic.Results) {
	if x.metrics == nil {
		return
	}
	for _, verdict := range verdicts {
		x.metrics.RecordSemanticComparison(verdict.Source)
	}
}

// recordSkipped writes one event per supplement domain that had no
// active ruleset, so a later review can see the run was partial.
func (x *Executor) recordSkipped(ctx context.Context, loaded *loader.Result) {
	for _, domain := range loaded.Skipped {
		event := audit.NewEvent(audit.ActionSupplementSkipped)
		event.Domain = domain
		event.Jurisdiction = loaded.BaseMetadata.Jurisdiction
		if err := x.sink.Record(ctx, event); err != nil {
			x.logger.Error("failed to record supplement skip audit event", "error", err)
		}
	}
}

// recordAudit writes the evaluation event. Audit failures are logged
// and swallowed; the report is the source of truth.
func (x *Executor) recordAudit(ctx context.Context, report *Report) {
	event := audit.NewEvent(audit.ActionRulesEvaluated)
	event.RulesetID = report.BaseMetadata.RulesetID
	event.Domain = report.BaseMetadata.Domain
	event.Jurisdiction = report.Jurisdiction
	event.Summary = map[string]any{
		"status":    string(report.Status),
		"domains":   report.Domains,
		"evaluated": report.RulesEvaluated,
		"passed":    report.Passed,
		"failed":    report.Failed,
		"warnings":  report.Warnings,
	}

	if err := x.sink.Record(ctx, event); err != nil {
		x.logger.Error("failed to record evaluation audit event", "error", err)
	}
}
