package semantic

import (
	"context"
	"reflect"
	"testing"

	"lcopilot-hq/lcopilot/pkg/docs"
	"lcopilot-hq/lcopilot/pkg/rules/ast"
)

// recordingComparator returns a fixed match answer and records calls.
type recordingComparator struct {
	match bool
	calls []string
}

func (r *recordingComparator) Compare(ctx context.Context, left, right string, opts CompareOptions) (*Verdict, error) {
	r.calls = append(r.calls, left+"|"+right)
	return &Verdict{Match: r.match, Expected: right, Found: left, Source: SourceAI}, nil
}

func testContext() *docs.Context {
	return docs.NewContext(docs.Tree{
		"lc": map[string]any{
			"port_of_loading": "MUNDRA PORT, INDIA",
		},
		"bill_of_lading": map[string]any{
			"port_of_loading": "Mundra Port India",
		},
	})
}

func semanticRule() ast.Rule {
	return ast.Rule{
		RuleID: "UCP-20A",
		Title:  "Port of loading must agree with the credit",
		Conditions: []ast.Condition{
			{Type: ast.ConditionFieldPresence, Field: "bill_of_lading.port_of_loading"},
			{
				Type:         ast.ConditionSemanticCheck,
				Field:        "bill_of_lading.port_of_loading",
				CompareField: "lc.port_of_loading",
			},
		},
	}
}

func TestInjectRewritesSemanticCondition(t *testing.T) {
	comparator := &recordingComparator{match: true}
	injector := NewInjector(comparator, nil)

	rules := []ast.Rule{semanticRule()}
	rewritten, results := injector.Inject(context.Background(), rules, testContext())

	if len(comparator.calls) != 1 {
		t.Fatalf("expected 1 comparison, got %d", len(comparator.calls))
	}

	// The non-semantic condition is untouched.
	if rewritten[0].Conditions[0].Type != ast.ConditionFieldPresence {
		t.Errorf("first condition type = %s", rewritten[0].Conditions[0].Type)
	}

	cond := rewritten[0].Conditions[1]
	if cond.Type != ast.ConditionEqualityMatch {
		t.Fatalf("rewritten type = %s, want equality_match", cond.Type)
	}
	wantField := ResultPrefix + "UCP-20A#1.match"
	if cond.Field != wantField {
		t.Errorf("rewritten field = %s, want %s", cond.Field, wantField)
	}
	if cond.Value != true {
		t.Errorf("rewritten value = %v, want true", cond.Value)
	}

	verdict, ok := results[ResultKey("UCP-20A", 1)]
	if !ok {
		t.Fatal("expected a verdict in the side-channel")
	}
	if !verdict.Match {
		t.Error("verdict should record the comparator's match")
	}

	// Input rules are untouched.
	if rules[0].Conditions[1].Type != ast.ConditionSemanticCheck {
		t.Error("input rule was mutated")
	}
}

func TestInjectUnresolvableFieldSkipsComparator(t *testing.T) {
	comparator := &recordingComparator{match: true}
	injector := NewInjector(comparator, nil)

	rule := semanticRule()
	rule.Conditions[1].Field = "bill_of_lading.missing_field"

	rewritten, results := injector.Inject(context.Background(), []ast.Rule{rule}, testContext())

	if len(comparator.calls) != 0 {
		t.Errorf("comparator should not run for unresolvable fields, got %d calls", len(comparator.calls))
	}
	if len(results) != 0 {
		t.Errorf("expected no verdicts, got %d", len(results))
	}

	// The condition is still rewritten so the evaluator sees a closed
	// vocabulary; without a verdict it resolves as not applicable.
	if rewritten[0].Conditions[1].Type != ast.ConditionEqualityMatch {
		t.Errorf("rewritten type = %s", rewritten[0].Conditions[1].Type)
	}
}

func TestInjectLiteralRightHandSide(t *testing.T) {
	comparator := &recordingComparator{match: false}
	injector := NewInjector(comparator, nil)

	rule := semanticRule()
	rule.Conditions[1].CompareField = ""
	rule.Conditions[1].Value = "Nhava Sheva"

	_, results := injector.Inject(context.Background(), []ast.Rule{rule}, testContext())

	if len(comparator.calls) != 1 {
		t.Fatalf("expected 1 comparison, got %d", len(comparator.calls))
	}
	if comparator.calls[0] != "Mundra Port India|Nhava Sheva" {
		t.Errorf("comparison inputs = %s", comparator.calls[0])
	}

	verdict := results[ResultKey("UCP-20A", 1)]
	if verdict == nil || verdict.Match {
		t.Error("expected a recorded mismatch verdict")
	}
}

func TestInjectDeterministicRulesPassThrough(t *testing.T) {
	comparator := &recordingComparator{match: true}
	injector := NewInjector(comparator, nil)

	rule := ast.Rule{
		RuleID: "UCP-14A",
		Conditions: []ast.Condition{
			{Type: ast.ConditionFieldPresence, Field: "lc.credit_number"},
		},
	}

	rewritten, results := injector.Inject(context.Background(), []ast.Rule{rule}, testContext())

	if len(comparator.calls) != 0 {
		t.Error("deterministic rules should not reach the comparator")
	}
	if len(results) != 0 {
		t.Error("expected empty side-channel")
	}
	if !reflect.DeepEqual(rewritten[0].Conditions[0], rule.Conditions[0]) {
		t.Error("deterministic conditions must pass through unchanged")
	}
}
