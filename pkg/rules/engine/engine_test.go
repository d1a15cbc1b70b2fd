package engine

import (
	"context"
	"reflect"
	"testing"

	"lcopilot-hq/lcopilot/pkg/audit"
	"lcopilot-hq/lcopilot/pkg/docs"
	"lcopilot-hq/lcopilot/pkg/rules/ast"
	"lcopilot-hq/lcopilot/pkg/rules/loader"
	"lcopilot-hq/lcopilot/pkg/rules/router"
	"lcopilot-hq/lcopilot/pkg/rules/semantic"
	"lcopilot-hq/lcopilot/pkg/rules/store"
)

func newTestEngine(t *testing.T, s *store.MemoryStore, sink audit.Sink) *Engine {
	t.Helper()

	evaluator := NewEvaluator(0.01, nil)
	injector := semantic.NewInjector(semantic.NewFallbackComparator(0.8), nil)
	executor := NewExecutor(evaluator, injector, sink, nil, nil)

	return New(
		router.New(nil, nil),
		loader.New(s, nil),
		executor,
		nil,
		nil,
	)
}

func activateRuleset(t *testing.T, s *store.MemoryStore, domain, jurisdiction, id string, rules []ast.Rule) {
	t.Helper()
	_, err := s.ImportRuleset(context.Background(), ast.Ruleset{
		ID:           id,
		Domain:       domain,
		Jurisdiction: jurisdiction,
		Version:      "2024.1",
	}, rules, true)
	if err != nil {
		t.Fatalf("ImportRuleset(%s): %v", id, err)
	}
}

func presentationContext() *docs.Context {
	return docs.NewContext(docs.Tree{
		"lc": map[string]any{
			"applicable_rules": "UCP LATEST VERSION",
			"credit_number":    "LC-2024-00123",
			"currency":         "USD",
			"port_of_loading":  "MUNDRA PORT, INDIA",
		},
		"invoice": map[string]any{
			"currency": "USD",
		},
		"bill_of_lading": map[string]any{
			"port_of_loading": "Mundra Port India",
		},
	})
}

func TestValidateCompliant(t *testing.T) {
	s := store.NewMemoryStore()
	activateRuleset(t, s, router.DomainUCP600, "global", "rs-ucp", []ast.Rule{
		{
			RuleID: "UCP-14A", RuleVersion: "1.0", Title: "Credit number present",
			Severity: ast.SeverityFail,
			Conditions: []ast.Condition{
				{Type: ast.ConditionFieldPresence, Field: "lc.credit_number"},
			},
		},
		{
			RuleID: "UCP-18A", RuleVersion: "1.0", Title: "Invoice currency matches credit",
			Severity: ast.SeverityFail,
			Conditions: []ast.Condition{
				{Type: ast.ConditionConsistencyCheck, Field: "invoice.currency", CompareField: "lc.currency"},
			},
		},
	})

	sink := audit.NewMemorySink()
	engine := newTestEngine(t, s, sink)

	report, err := engine.Validate(context.Background(), presentationContext())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if report.Status != StatusCompliant {
		t.Errorf("status = %s, want compliant", report.Status)
	}
	if report.Passed != 2 || report.Failed != 0 {
		t.Errorf("passed/failed = %d/%d, want 2/0", report.Passed, report.Failed)
	}
	if report.BaseMetadata.RulesetID != "rs-ucp" {
		t.Errorf("base ruleset = %s", report.BaseMetadata.RulesetID)
	}

	events := sink.Events()
	if len(events) == 0 || events[len(events)-1].Action != audit.ActionRulesEvaluated {
		t.Error("expected an evaluation audit event")
	}
}

func TestValidateDiscrepant(t *testing.T) {
	s := store.NewMemoryStore()
	activateRuleset(t, s, router.DomainUCP600, "global", "rs-ucp", []ast.Rule{
		{
			RuleID: "UCP-14D", RuleVersion: "1.0", Title: "Insurance certificate required",
			Severity: ast.SeverityFail,
			Conditions: []ast.Condition{
				{Type: ast.ConditionDocRequired, Document: "insurance_certificate"},
			},
		},
	})

	engine := newTestEngine(t, s, nil)
	report, err := engine.Validate(context.Background(), presentationContext())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if report.Status != StatusDiscrepant {
		t.Errorf("status = %s, want discrepant", report.Status)
	}
	discrepancies := report.Discrepancies()
	if len(discrepancies) != 1 || discrepancies[0].RuleID != "UCP-14D" {
		t.Fatalf("discrepancies = %+v", discrepancies)
	}
}

func TestValidateWarnSeverityStaysCompliant(t *testing.T) {
	s := store.NewMemoryStore()
	activateRuleset(t, s, router.DomainUCP600, "global", "rs-ucp", []ast.Rule{
		{
			RuleID: "UCP-ADV-1", RuleVersion: "1.0", Title: "Advisory check",
			Severity: ast.SeverityWarn,
			Conditions: []ast.Condition{
				{Type: ast.ConditionDocRequired, Document: "packing_list"},
			},
		},
	})

	engine := newTestEngine(t, s, nil)
	report, err := engine.Validate(context.Background(), presentationContext())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if report.Status != StatusCompliant {
		t.Errorf("status = %s, want compliant (warn severity must not flip the verdict)", report.Status)
	}
	if report.Warnings != 1 {
		t.Errorf("warnings = %d, want 1", report.Warnings)
	}
}

func TestValidateBlockedOnMissingPrimaryRuleset(t *testing.T) {
	engine := newTestEngine(t, store.NewMemoryStore(), nil)

	report, err := engine.Validate(context.Background(), presentationContext())
	if err != nil {
		t.Fatalf("blocked runs return a report, not an error: %v", err)
	}

	if report.Status != StatusBlocked {
		t.Errorf("status = %s, want blocked", report.Status)
	}
	if report.BlockReason == "" {
		t.Error("blocked report must carry a reason")
	}
	if len(report.Outcomes) != 0 {
		t.Error("blocked report must not carry outcomes")
	}
}

func TestValidateSemanticRuleEndToEnd(t *testing.T) {
	s := store.NewMemoryStore()
	activateRuleset(t, s, router.DomainUCP600, "global", "rs-ucp", []ast.Rule{
		{
			RuleID: "UCP-20A", RuleVersion: "1.0",
			Title:       "Port of loading must agree with the credit",
			Severity:    ast.SeverityFail,
			RequiresLLM: true,
			Conditions: []ast.Condition{
				{
					Type:         ast.ConditionSemanticCheck,
					Field:        "bill_of_lading.port_of_loading",
					CompareField: "lc.port_of_loading",
					Threshold:    0.7,
				},
			},
		},
	})

	engine := newTestEngine(t, s, nil)
	report, err := engine.Validate(context.Background(), presentationContext())
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if report.Status != StatusCompliant {
		t.Fatalf("status = %s, want compliant (fuzzy comparator should match the port names)", report.Status)
	}

	outcome := report.Outcomes[0]
	if len(outcome.SemanticVerdicts) != 1 {
		t.Fatalf("expected 1 semantic verdict, got %d", len(outcome.SemanticVerdicts))
	}
	verdict := outcome.SemanticVerdicts[0]
	if !verdict.Match || verdict.Source != semantic.SourceFuzzy {
		t.Errorf("verdict = %+v", verdict)
	}
}

func TestValidateJurisdictionFallbackSequence(t *testing.T) {
	s := store.NewMemoryStore()
	activateRuleset(t, s, router.DomainUCP600, "global", "rs-ucp", []ast.Rule{
		{
			RuleID: "UCP-14A", RuleVersion: "1.0", Title: "Credit number present",
			Conditions: []ast.Condition{
				{Type: ast.ConditionFieldPresence, Field: "lc.credit_number"},
			},
		},
	})

	docctx := presentationContext()
	docctx.Jurisdiction = "bd"
	docctx.Documents["lc"].(map[string]any)["narrative"] = "presentation under eUCP version 2.1"

	sink := audit.NewMemorySink()
	engine := newTestEngine(t, s, sink)
	report, err := engine.Validate(context.Background(), docctx)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	// eUCP and crossdoc supplements are detected but have no published
	// rulesets; they stay in the resolved sequence while only the
	// primary, served from global, contributes provenance.
	wantDomains := []string{router.DomainUCP600, router.DomainEUCP, router.DomainCrossDoc}
	if !reflect.DeepEqual(report.Domains, wantDomains) {
		t.Errorf("resolved domains = %v, want %v", report.Domains, wantDomains)
	}
	if len(report.Provenance) != 1 || report.Provenance[0].Domain != router.DomainUCP600 {
		t.Errorf("provenance = %+v, want only %s", report.Provenance, router.DomainUCP600)
	}
	var skipped []string
	for _, event := range sink.Events() {
		if event.Action == audit.ActionSupplementSkipped {
			skipped = append(skipped, event.Domain)
		}
	}
	if len(skipped) != 2 {
		t.Errorf("supplement skip events for %v, want eUCP and crossdoc", skipped)
	}
	if report.Status != StatusCompliant {
		t.Errorf("status = %s, want compliant", report.Status)
	}
	if report.BaseMetadata.EffectiveJurisdiction != "global" {
		t.Errorf("effective jurisdiction = %s, want global", report.BaseMetadata.EffectiveJurisdiction)
	}
	if report.Jurisdiction != "bd" {
		t.Errorf("requested jurisdiction = %s, want bd", report.Jurisdiction)
	}
}

func TestRuleVerdictsExtraction(t *testing.T) {
	verdicts := semantic.Results{
		"UCP-20A#1": &semantic.Verdict{Match: true},
		"UCP-20A#3": &semantic.Verdict{Match: false},
		"UCP-21B#0": &semantic.Verdict{Match: true},
	}

	out := ruleVerdicts("UCP-20A", verdicts)
	if len(out) != 2 {
		t.Fatalf("expected 2 verdicts for UCP-20A, got %d", len(out))
	}
	if out[1] == nil || out[3] == nil {
		t.Error("expected verdicts keyed by condition index 1 and 3")
	}
	if ruleVerdicts("UCP-99Z", verdicts) != nil {
		t.Error("expected nil for a rule without verdicts")
	}
}
