package ast

import "testing"

func contentRule() Rule {
	return Rule{
		RuleID:       "UCP-14A",
		RuleVersion:  "1.0",
		Article:      "UCP600 Art. 14(a)",
		Domain:       "icc.ucp600",
		Jurisdiction: "global",
		DocumentType: "any",
		Severity:     SeverityFail,
		Title:        "Examination on the face of documents",
		Conditions: []Condition{
			{Type: ConditionFieldPresence, Field: "lc.credit_number"},
		},
	}
}

func TestChecksumStableAcrossGovernanceState(t *testing.T) {
	rule := contentRule()

	base, err := rule.ComputeChecksum()
	if err != nil {
		t.Fatalf("ComputeChecksum: %v", err)
	}

	// Governance fields change as rulesets move through draft and
	// activation; none of them may affect the content hash.
	rule.Checksum = "stale"
	rule.RulesetID = "rs-2024-q3"
	rule.RulesetVersion = "2024.3"
	rule.IsActive = true

	again, err := rule.ComputeChecksum()
	if err != nil {
		t.Fatalf("ComputeChecksum: %v", err)
	}
	if base != again {
		t.Errorf("checksum changed with governance state: %s vs %s", base, again)
	}
}

func TestChecksumChangesWithContent(t *testing.T) {
	rule := contentRule()
	base, _ := rule.ComputeChecksum()

	rule.Conditions[0].Field = "lc.expiry_date"
	changed, _ := rule.ComputeChecksum()

	if base == changed {
		t.Error("content change must change the checksum")
	}
}

func TestChecksumDeterministic(t *testing.T) {
	rule := contentRule()

	first, _ := rule.ComputeChecksum()
	for i := 0; i < 10; i++ {
		if sum, _ := rule.ComputeChecksum(); sum != first {
			t.Fatalf("checksum not deterministic on iteration %d", i)
		}
	}
	if len(first) != 64 {
		t.Errorf("checksum length = %d, want 64 hex chars", len(first))
	}
}

func TestHasSemanticConditions(t *testing.T) {
	rule := contentRule()
	if rule.HasSemanticConditions() {
		t.Error("deterministic rule misreported as semantic")
	}

	rule.Conditions = append(rule.Conditions, Condition{
		Type:         ConditionSemanticCheck,
		Field:        "bill_of_lading.port_of_loading",
		CompareField: "lc.port_of_loading",
	})
	if !rule.HasSemanticConditions() {
		t.Error("semantic condition not detected")
	}
}

func TestAppliesTo(t *testing.T) {
	tests := []struct {
		ruleType  string
		requested string
		want      bool
	}{
		{"any", "invoice", true},
		{"invoice", "invoice", true},
		{"invoice", "bill_of_lading", false},
		{"invoice", "", true},
		{"", "invoice", true},
	}

	for _, tt := range tests {
		rule := Rule{DocumentType: tt.ruleType}
		if got := rule.AppliesTo(tt.requested); got != tt.want {
			t.Errorf("AppliesTo(%q/%q) = %v, want %v", tt.ruleType, tt.requested, got, tt.want)
		}
	}
}

func TestEffectiveSeverityDefaultsToFail(t *testing.T) {
	tests := []struct {
		in   Severity
		want Severity
	}{
		{SeverityFail, SeverityFail},
		{SeverityWarn, SeverityWarn},
		{SeverityInfo, SeverityInfo},
		{"", SeverityFail},
		{"critical", SeverityFail},
	}

	for _, tt := range tests {
		rule := Rule{Severity: tt.in}
		if got := rule.EffectiveSeverity(); got != tt.want {
			t.Errorf("EffectiveSeverity(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
