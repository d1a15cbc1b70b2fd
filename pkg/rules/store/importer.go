package store

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wI2L/jsondiff"

	"lcopilot-hq/lcopilot/pkg/audit"
	"lcopilot-hq/lcopilot/pkg/rules/ast"
)

// Importer wraps an Admin store with audit-trail emission. On activation
// it records a JSON Patch diff for every rule that was updated in place,
// so the audit trail shows exactly what a publish or rollback changed.
type Importer struct {
	store  Admin
	sink   audit.Sink
	logger *slog.Logger
}

// NewImporter creates an Importer. A nil sink disables auditing.
func NewImporter(store Admin, sink audit.Sink, logger *slog.Logger) *Importer {
	if sink == nil {
		sink = audit.NopSink{}
	}
	if logger == nil {
		logger = slog.Default().With("component", "rules.importer")
	}
	return &Importer{store: store, sink: sink, logger: logger}
}

// Import ingests a ruleset and writes an audit event with the summary.
// Audit failures are logged, never propagated: the import itself is the
// source of truth.
func (im *Importer) Import(ctx context.Context, ruleset ast.Ruleset, rules []ast.Rule, activate bool) (*ImportSummary, error) {
	var diffs map[string]any
	if activate {
		diffs = im.collectDiffs(ctx, ruleset, rules)
	}

	summary, err := im.store.ImportRuleset(ctx, ruleset, rules, activate)
	if err != nil {
		return nil, err
	}

	action := audit.ActionRulesetImported
	if activate {
		action = audit.ActionRulesetActivated
	}

	event := audit.NewEvent(action)
	event.RulesetID = ruleset.ID
	event.Domain = ruleset.Domain
	event.Jurisdiction = ruleset.Jurisdiction
	event.Summary = map[string]any{
		"ruleset_version":  ruleset.Version,
		"rulebook_version": ruleset.RulebookVersion,
		"mode":             string(summary.Mode),
		"inserted":         summary.Inserted,
		"updated":          summary.Updated,
		"skipped_existing": summary.SkippedExisting,
		"error_count":      len(summary.Errors),
	}
	if len(diffs) > 0 {
		event.Summary["rule_diffs"] = diffs
	}

	if err := im.sink.Record(ctx, event); err != nil {
		im.logger.Error("failed to record import audit event",
			"error", err,
			"ruleset_id", ruleset.ID,
		)
	}

	return summary, nil
}

// collectDiffs computes JSON Patch diffs between stored rules and the
// incoming payload, keyed by rule_id. Only rules that already exist and
// actually change produce a diff. Incoming rules get the same scope
// defaults the import applies, so an unchanged rule diffs clean.
func (im *Importer) collectDiffs(ctx context.Context, ruleset ast.Ruleset, rules []ast.Rule) map[string]any {
	diffs := make(map[string]any)

	for i := range rules {
		incoming := rules[i]
		if incoming.Domain == "" {
			incoming.Domain = ruleset.Domain
		}
		if incoming.Jurisdiction == "" {
			incoming.Jurisdiction = ruleset.Jurisdiction
		}
		if incoming.DocumentType == "" {
			incoming.DocumentType = ast.DocumentTypeAny
		}
		existing, err := im.store.GetRule(ctx, incoming.RuleID)
		if err != nil {
			if !errors.Is(err, ErrRuleNotFound) {
				im.logger.Warn("could not load rule for diffing",
					"rule_id", incoming.RuleID,
					"error", err,
				)
			}
			continue
		}

		oldJSON, err := existing.NormalizedJSON()
		if err != nil {
			continue
		}
		newJSON, err := incoming.NormalizedJSON()
		if err != nil {
			continue
		}

		patch, err := jsondiff.CompareJSON(oldJSON, newJSON)
		if err != nil {
			im.logger.Warn("rule diff failed",
				"rule_id", incoming.RuleID,
				"error", err,
			)
			continue
		}
		if len(patch) > 0 {
			diffs[incoming.RuleID] = patch
		}
	}

	return diffs
}
