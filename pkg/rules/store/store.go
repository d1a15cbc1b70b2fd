package store

import (
	"context"
	"errors"

	"lcopilot-hq/lcopilot/pkg/rules/ast"
)

// ErrNoActiveRuleset is returned by GetActiveRuleset when no ruleset is
// active for the requested domain and jurisdiction. The loader decides
// whether that is fatal (primary domain) or skippable (supplement).
var ErrNoActiveRuleset = errors.New("no active ruleset")

// ActiveRuleset is the result of an active-ruleset lookup: the ruleset
// descriptor plus its rules in stable order.
type ActiveRuleset struct {
	Ruleset ast.Ruleset
	Rules   []ast.Rule
}

// Store is the read interface consumed by the rules loader.
//
// GetActiveRuleset must return exactly one or zero results for a given
// (domain, jurisdiction); ambiguous multiples indicate a broken
// governance invariant and surface as an error. documentType narrows the
// returned rules to one document kind; empty returns all rules. Absence
// of an active ruleset is reported as ErrNoActiveRuleset.
type Store interface {
	GetActiveRuleset(ctx context.Context, domain, jurisdiction, documentType string) (*ActiveRuleset, error)
}

// ImportMode distinguishes the two governance paths.
type ImportMode string

const (
	// ModeDraft inserts only genuinely new rule IDs; existing rules are
	// left untouched and counted as skipped.
	ModeDraft ImportMode = "draft"

	// ModeActivate upserts every payload rule and flips the active
	// ruleset for the target domain and jurisdiction.
	ModeActivate ImportMode = "activate"
)

// ImportSummary reports the outcome of one ruleset import.
type ImportSummary struct {
	RulesetID       string        `json:"ruleset_id"`
	RulesetVersion  string        `json:"ruleset_version"`
	Mode            ImportMode    `json:"mode"`
	Inserted        int           `json:"inserted"`
	Updated         int           `json:"updated"`
	SkippedExisting int           `json:"skipped_existing"`
	Errors          []ImportError `json:"errors,omitempty"`
}

// ImportError records one malformed rule in an import payload. A bad rule
// never aborts the rest of the batch.
type ImportError struct {
	RuleID  string `json:"rule_id"`
	Message string `json:"message"`
}

// ErrorCount returns the number of per-rule errors.
func (s *ImportSummary) ErrorCount() int {
	return len(s.Errors)
}

// Admin extends Store with the governance write path and introspection.
type Admin interface {
	Store

	// ImportRuleset ingests a ruleset's rules. With activate=false this
	// is a draft upload; with activate=true it publishes (or rolls back
	// to) the ruleset, atomically flipping is_active for its domain and
	// jurisdiction.
	ImportRuleset(ctx context.Context, ruleset ast.Ruleset, rules []ast.Rule, activate bool) (*ImportSummary, error)

	// ListRulesets returns every known ruleset descriptor.
	ListRulesets(ctx context.Context) ([]ast.Ruleset, error)

	// GetRule returns the stored rule for a rule ID.
	GetRule(ctx context.Context, ruleID string) (*ast.Rule, error)
}

// ErrRuleNotFound is returned by GetRule for unknown rule IDs.
var ErrRuleNotFound = errors.New("rule not found")

// validateRule checks an import payload rule. Errors are recorded in the
// summary rather than aborting the batch.
func validateRule(rule *ast.Rule) error {
	if rule.RuleID == "" {
		return errors.New("rule_id is required")
	}
	if rule.Title == "" {
		return errors.New("title is required")
	}
	if len(rule.Conditions) == 0 {
		return errors.New("at least one condition is required")
	}
	switch rule.Severity {
	case ast.SeverityFail, ast.SeverityWarn, ast.SeverityInfo, "":
	default:
		return errors.New("severity must be fail, warn or info")
	}
	for i := range rule.Conditions {
		if !knownConditionType(rule.Conditions[i].Type) {
			return errors.New("unknown condition type " + string(rule.Conditions[i].Type))
		}
	}
	return nil
}

func knownConditionType(t ast.ConditionType) bool {
	switch t {
	case ast.ConditionFieldPresence, ast.ConditionEnumValue,
		ast.ConditionEqualityMatch, ast.ConditionConsistencyCheck,
		ast.ConditionNumericRange, ast.ConditionDateOrder,
		ast.ConditionTimeConstraint, ast.ConditionDocRequired,
		ast.ConditionSemanticCheck:
		return true
	}
	return false
}
