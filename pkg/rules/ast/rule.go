package ast

// Severity classifies the consequence of a failed rule.
type Severity string

const (
	// SeverityFail marks a discrepancy that makes the presentation
	// non-compliant.
	SeverityFail Severity = "fail"

	// SeverityWarn marks an issue the examiner should review but which
	// does not by itself block compliance.
	SeverityWarn Severity = "warn"

	// SeverityInfo marks an advisory observation.
	SeverityInfo Severity = "info"
)

// DocumentTypeAny matches every document kind.
const DocumentTypeAny = "any"

// Rule is a single testable compliance requirement.
type Rule struct {
	// RuleID is the stable identifier, unique within the rule store.
	RuleID string `json:"rule_id"`

	// RuleVersion is the version of this individual rule's content.
	RuleVersion string `json:"rule_version"`

	// Article is the textual citation into the rulebook
	// (e.g. "UCP600 Art. 14(c)").
	Article string `json:"article,omitempty"`

	// Domain and Jurisdiction scope the rule to a rulebook family and a
	// jurisdiction.
	Domain       string `json:"domain"`
	Jurisdiction string `json:"jurisdiction"`

	// DocumentType is the document kind the rule applies to, or "any".
	DocumentType string `json:"document_type"`

	// Severity is the consequence of failure.
	Severity Severity `json:"severity"`

	// Deterministic is true when every condition is decidable without
	// the semantic comparator.
	Deterministic bool `json:"deterministic"`

	// RequiresLLM is true when at least one condition is a semantic
	// check that benefits from the AI comparator.
	RequiresLLM bool `json:"requires_llm"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Conditions is the ordered check list. All conditions must hold for
	// the rule to pass.
	Conditions []Condition `json:"conditions"`

	// ExpectedOutcome is a free-form descriptive payload carried through
	// to outcomes for report rendering.
	ExpectedOutcome map[string]any `json:"expected_outcome,omitempty"`

	Tags []string `json:"tags,omitempty"`

	// Checksum is the content hash over the rule's normalized JSON.
	// Recomputed on every import; never part of the hashed content.
	Checksum string `json:"checksum,omitempty"`

	// RulesetID and RulesetVersion identify the owning ruleset.
	RulesetID      string `json:"ruleset_id,omitempty"`
	RulesetVersion string `json:"ruleset_version,omitempty"`

	// IsActive is true only for rules tied to the currently active
	// ruleset of their domain and jurisdiction. Maintained exclusively
	// by the importer's activate path.
	IsActive bool `json:"is_active,omitempty"`
}

// HasSemanticConditions reports whether any condition needs the semantic
// injector.
func (r *Rule) HasSemanticConditions() bool {
	for i := range r.Conditions {
		if r.Conditions[i].IsSemantic() {
			return true
		}
	}
	return false
}

// AppliesTo reports whether the rule targets the given document type.
// An empty requested type or a rule scoped to "any" always applies.
func (r *Rule) AppliesTo(documentType string) bool {
	if documentType == "" || r.DocumentType == DocumentTypeAny || r.DocumentType == "" {
		return true
	}
	return r.DocumentType == documentType
}

// EffectiveSeverity returns the severity, defaulting to fail. A rule
// without a declared severity blocks compliance rather than silently
// downgrading.
func (r *Rule) EffectiveSeverity() Severity {
	switch r.Severity {
	case SeverityFail, SeverityWarn, SeverityInfo:
		return r.Severity
	default:
		return SeverityFail
	}
}
