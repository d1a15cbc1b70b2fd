package store

import (
	"context"
	"testing"

	"lcopilot-hq/lcopilot/pkg/audit"
)

func TestImporterEmitsAuditEvents(t *testing.T) {
	s := NewMemoryStore()
	sink := audit.NewMemorySink()
	importer := NewImporter(s, sink, nil)
	ctx := context.Background()

	if _, err := importer.Import(ctx, ruleset("rs-1", "icc.ucp600", "global", "2024.1"),
		draftRules("UCP-1"), false); err != nil {
		t.Fatalf("draft import: %v", err)
	}
	if _, err := importer.Import(ctx, ruleset("rs-1", "icc.ucp600", "global", "2024.1"),
		draftRules("UCP-1"), true); err != nil {
		t.Fatalf("activate: %v", err)
	}

	events := sink.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(events))
	}
	if events[0].Action != audit.ActionRulesetImported {
		t.Errorf("first action = %s, want %s", events[0].Action, audit.ActionRulesetImported)
	}
	if events[1].Action != audit.ActionRulesetActivated {
		t.Errorf("second action = %s, want %s", events[1].Action, audit.ActionRulesetActivated)
	}
	if events[1].RulesetID != "rs-1" || events[1].Domain != "icc.ucp600" {
		t.Errorf("event scope = %s/%s", events[1].RulesetID, events[1].Domain)
	}
}

func TestImporterRecordsRuleDiffsOnActivate(t *testing.T) {
	s := NewMemoryStore()
	sink := audit.NewMemorySink()
	importer := NewImporter(s, sink, nil)
	ctx := context.Background()

	original := draftRules("UCP-1")
	original[0].Title = "original title"
	if _, err := importer.Import(ctx, ruleset("rs-1", "icc.ucp600", "global", "2024.1"), original, true); err != nil {
		t.Fatalf("first activate: %v", err)
	}

	changed := draftRules("UCP-1")
	changed[0].Title = "revised title"
	if _, err := importer.Import(ctx, ruleset("rs-2", "icc.ucp600", "global", "2024.2"), changed, true); err != nil {
		t.Fatalf("second activate: %v", err)
	}

	events := sink.Events()
	last := events[len(events)-1]

	diffs, ok := last.Summary["rule_diffs"].(map[string]any)
	if !ok {
		t.Fatalf("expected rule_diffs in the activation summary, got %v", last.Summary)
	}
	if _, ok := diffs["UCP-1"]; !ok {
		t.Errorf("expected a diff for UCP-1, got %v", diffs)
	}
}

func TestImporterUnchangedRulesProduceNoDiff(t *testing.T) {
	s := NewMemoryStore()
	sink := audit.NewMemorySink()
	importer := NewImporter(s, sink, nil)
	ctx := context.Background()

	rules := draftRules("UCP-1")
	if _, err := importer.Import(ctx, ruleset("rs-1", "icc.ucp600", "global", "2024.1"), rules, true); err != nil {
		t.Fatalf("first activate: %v", err)
	}
	if _, err := importer.Import(ctx, ruleset("rs-2", "icc.ucp600", "global", "2024.2"), draftRules("UCP-1"), true); err != nil {
		t.Fatalf("second activate: %v", err)
	}

	events := sink.Events()
	last := events[len(events)-1]
	if _, ok := last.Summary["rule_diffs"]; ok {
		t.Error("identical rule content must not produce diffs")
	}
}
