package loader

import (
	"context"
	"errors"
	"testing"

	"lcopilot-hq/lcopilot/pkg/rules/ast"
	"lcopilot-hq/lcopilot/pkg/rules/store"
)

func importActive(t *testing.T, s *store.MemoryStore, domain, jurisdiction, id string, ruleIDs ...string) {
	t.Helper()

	rules := make([]ast.Rule, 0, len(ruleIDs))
	for _, rid := range ruleIDs {
		rules = append(rules, ast.Rule{
			RuleID:      rid,
			RuleVersion: "1.0",
			Title:       "test rule " + rid,
			Conditions: []ast.Condition{
				{Type: ast.ConditionFieldPresence, Field: "lc.credit_number"},
			},
		})
	}

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

func TestLoadPrimaryAndSupplements(t *testing.T) {
	s := store.NewMemoryStore()
	importActive(t, s, "icc.ucp600", "global", "rs-ucp", "UCP-1", "UCP-2")
	importActive(t, s, "icc.eucp2.1", "global", "rs-eucp", "EUCP-1")

	l := New(s, nil)
	result, err := l.LoadRulesWithProvenance(context.Background(),
		[]string{"icc.ucp600", "icc.eucp2.1"}, "global", "")
	if err != nil {
		t.Fatalf("LoadRulesWithProvenance: %v", err)
	}

	if len(result.Rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(result.Rules))
	}
	// Primary domain's rules come first, in rule_id order.
	wantOrder := []string{"UCP-1", "UCP-2", "EUCP-1"}
	for i, want := range wantOrder {
		if got := result.Rules[i].Rule.RuleID; got != want {
			t.Errorf("rules[%d] = %s, want %s", i, got, want)
		}
	}

	if result.BaseMetadata.RulesetID != "rs-ucp" {
		t.Errorf("base metadata ruleset = %s, want rs-ucp", result.BaseMetadata.RulesetID)
	}
	if result.BaseMetadata.RuleCountUsed != 2 {
		t.Errorf("base rule count = %d, want 2", result.BaseMetadata.RuleCountUsed)
	}
	if len(result.Provenance) != 2 {
		t.Fatalf("expected provenance for 2 domains, got %d", len(result.Provenance))
	}
	if result.Provenance[1].Domain != "icc.eucp2.1" {
		t.Errorf("second provenance domain = %s", result.Provenance[1].Domain)
	}
}

func TestLoadPrimaryFailClosed(t *testing.T) {
	s := store.NewMemoryStore()

	l := New(s, nil)
	_, err := l.LoadRulesWithProvenance(context.Background(),
		[]string{"icc.ucp600"}, "global", "")
	if err == nil {
		t.Fatal("expected fail-closed error for missing primary ruleset")
	}

	var unavailable *RulesetUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected RulesetUnavailableError, got %T: %v", err, err)
	}
	if unavailable.Domain != "icc.ucp600" {
		t.Errorf("error domain = %s", unavailable.Domain)
	}
}

func TestLoadSupplementMissIsSkipped(t *testing.T) {
	s := store.NewMemoryStore()
	importActive(t, s, "icc.ucp600", "global", "rs-ucp", "UCP-1")

	l := New(s, nil)
	result, err := l.LoadRulesWithProvenance(context.Background(),
		[]string{"icc.ucp600", "icc.eucp2.1", "icc.lcopilot.crossdoc"}, "global", "")
	if err != nil {
		t.Fatalf("supplement miss must not fail the load: %v", err)
	}

	if len(result.Rules) != 1 {
		t.Errorf("expected 1 rule, got %d", len(result.Rules))
	}
	if len(result.Provenance) != 1 {
		t.Errorf("expected provenance only for the resolved domain, got %d", len(result.Provenance))
	}
	want := []string{"icc.eucp2.1", "icc.lcopilot.crossdoc"}
	if len(result.Skipped) != len(want) {
		t.Fatalf("skipped = %v, want %v", result.Skipped, want)
	}
	for i, domain := range want {
		if result.Skipped[i] != domain {
			t.Errorf("skipped[%d] = %s, want %s", i, result.Skipped[i], domain)
		}
	}
}

func TestLoadICCGlobalFallback(t *testing.T) {
	s := store.NewMemoryStore()
	importActive(t, s, "icc.ucp600", "global", "rs-ucp-global", "UCP-1")

	l := New(s, nil)
	result, err := l.LoadRulesWithProvenance(context.Background(),
		[]string{"icc.ucp600"}, "bd", "")
	if err != nil {
		t.Fatalf("expected global fallback to succeed: %v", err)
	}

	if result.BaseMetadata.Jurisdiction != "bd" {
		t.Errorf("requested jurisdiction = %s, want bd", result.BaseMetadata.Jurisdiction)
	}
	if result.BaseMetadata.EffectiveJurisdiction != "global" {
		t.Errorf("effective jurisdiction = %s, want global", result.BaseMetadata.EffectiveJurisdiction)
	}
}

func TestLoadJurisdictionPreferredOverGlobal(t *testing.T) {
	s := store.NewMemoryStore()
	importActive(t, s, "icc.ucp600", "global", "rs-ucp-global", "UCP-1")
	importActive(t, s, "icc.ucp600", "bd", "rs-ucp-bd", "UCP-BD-1", "UCP-BD-2")

	l := New(s, nil)
	result, err := l.LoadRulesWithProvenance(context.Background(),
		[]string{"icc.ucp600"}, "bd", "")
	if err != nil {
		t.Fatalf("LoadRulesWithProvenance: %v", err)
	}

	if result.BaseMetadata.RulesetID != "rs-ucp-bd" {
		t.Errorf("ruleset = %s, want the jurisdiction-specific rs-ucp-bd", result.BaseMetadata.RulesetID)
	}
	if result.BaseMetadata.EffectiveJurisdiction != "bd" {
		t.Errorf("effective jurisdiction = %s, want bd", result.BaseMetadata.EffectiveJurisdiction)
	}
}

func TestLoadNonICCDomainNoFallback(t *testing.T) {
	s := store.NewMemoryStore()
	importActive(t, s, "sanctions.ofac", "global", "rs-ofac", "OFAC-1")

	l := New(s, nil)
	_, err := l.LoadRulesWithProvenance(context.Background(),
		[]string{"sanctions.ofac"}, "bd", "")
	if err == nil {
		t.Fatal("non-ICC domains must not fall back to global")
	}

	var unavailable *RulesetUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected RulesetUnavailableError, got %T", err)
	}
	if unavailable.TriedGlobal {
		t.Error("TriedGlobal should be false for non-ICC domains")
	}
}

func TestLoadMultipleDomainsDistinctProvenance(t *testing.T) {
	s := store.NewMemoryStore()
	importActive(t, s, "icc.ucp600", "global", "rs-ucp", "UCP-1")
	importActive(t, s, "icc.lcopilot.crossdoc", "global", "rs-cross", "CROSS-1")

	l := New(s, nil)
	result, err := l.LoadRulesWithProvenance(context.Background(),
		[]string{"icc.ucp600", "icc.lcopilot.crossdoc"}, "global", "")
	if err != nil {
		t.Fatalf("LoadRulesWithProvenance: %v", err)
	}
	if len(result.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(result.Rules))
	}
	if result.Rules[0].Meta.Domain == result.Rules[1].Meta.Domain {
		t.Error("rules should carry distinct per-domain provenance")
	}
}

func TestLoadEmptyDomainSequence(t *testing.T) {
	l := New(store.NewMemoryStore(), nil)
	_, err := l.LoadRulesWithProvenance(context.Background(), nil, "global", "")
	if err == nil {
		t.Fatal("expected error for empty domain sequence")
	}
}
