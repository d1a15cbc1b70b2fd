package engine

import (
	"time"

	"lcopilot-hq/lcopilot/pkg/rules/ast"
	"lcopilot-hq/lcopilot/pkg/rules/loader"
	"lcopilot-hq/lcopilot/pkg/rules/semantic"
)

// RuleStatus is the outcome of evaluating one rule.
type RuleStatus string

const (
	// StatusPassed means every applicable condition held.
	StatusPassed RuleStatus = "passed"

	// StatusFailed means at least one condition was violated.
	StatusFailed RuleStatus = "failed"

	// StatusNotApplicable means no condition could be decided against
	// this context. Not-applicable rules are excluded from the report.
	StatusNotApplicable RuleStatus = "not_applicable"
)

// ComplianceStatus is the overall verdict of a validation run.
type ComplianceStatus string

const (
	// StatusCompliant means no applicable fail-severity rule was broken.
	StatusCompliant ComplianceStatus = "compliant"

	// StatusDiscrepant means at least one fail-severity rule failed.
	StatusDiscrepant ComplianceStatus = "discrepant"

	// StatusBlocked means validation could not run: the primary
	// ruleset was unavailable. No per-rule outcomes exist.
	StatusBlocked ComplianceStatus = "blocked"
)

// ConditionResult is the outcome of one condition inside a rule.
type ConditionResult struct {
	Index  int               `json:"index"`
	Type   ast.ConditionType `json:"type"`
	Status RuleStatus        `json:"status"`

	// Field is the primary field path the condition tested.
	Field string `json:"field,omitempty"`

	// Actual and Expected describe the comparison for failed conditions.
	Actual   any `json:"actual,omitempty"`
	Expected any `json:"expected,omitempty"`

	// Message is the rule author's failure text, when provided.
	Message string `json:"message,omitempty"`
}

// RuleOutcome is the evaluated result of one rule, with the provenance
// of the ruleset it came from.
type RuleOutcome struct {
	RuleID      string       `json:"rule_id"`
	RuleVersion string       `json:"rule_version"`
	Article     string       `json:"article,omitempty"`
	Title       string       `json:"title"`
	Severity    ast.Severity `json:"severity"`
	Status      RuleStatus   `json:"status"`

	Conditions []ConditionResult `json:"conditions"`

	// SemanticVerdicts holds comparator verdicts for this rule's
	// rewritten semantic conditions, keyed by condition index.
	SemanticVerdicts map[int]*semantic.Verdict `json:"semantic_verdicts,omitempty"`

	// ExpectedOutcome echoes the rule's descriptive payload for report
	// rendering.
	ExpectedOutcome map[string]any `json:"expected_outcome,omitempty"`

	Provenance loader.Provenance `json:"provenance"`
}

// Report is the full result of one validation run.
type Report struct {
	Status      ComplianceStatus `json:"status"`
	GeneratedAt time.Time        `json:"generated_at"`

	// Domains is the resolved domain sequence, primary first.
	Domains []string `json:"domains"`

	Jurisdiction string `json:"jurisdiction"`

	// BaseMetadata is the primary domain's ruleset provenance; unset
	// when the run was blocked.
	BaseMetadata loader.Provenance `json:"base_metadata"`

	// Provenance lists every ruleset that contributed rules.
	Provenance []loader.Provenance `json:"provenance,omitempty"`

	// Outcomes holds the passed and failed rules. Not-applicable rules
	// are excluded; RulesEvaluated counts them.
	Outcomes []RuleOutcome `json:"outcomes"`

	RulesEvaluated int `json:"rules_evaluated"`
	Passed         int `json:"passed"`
	Failed         int `json:"failed"`
	Warnings       int `json:"warnings"`

	// BlockReason explains a blocked verdict.
	BlockReason string `json:"block_reason,omitempty"`
}

// Discrepancies returns the failed outcomes of fail severity, the ones
// that make the presentation non-compliant.
func (r *Report) Discrepancies() []RuleOutcome {
	var out []RuleOutcome
	for _, outcome := range r.Outcomes {
		if outcome.Status == StatusFailed && outcome.Severity == ast.SeverityFail {
			out = append(out, outcome)
		}
	}
	return out
}
