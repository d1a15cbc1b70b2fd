package ast

// ConditionType identifies one of the fixed condition kinds a rule may
// carry. The vocabulary is closed: the evaluator rejects anything else.
type ConditionType string

const (
	// ConditionFieldPresence requires the field path to resolve to a
	// non-null, non-empty value.
	ConditionFieldPresence ConditionType = "field_presence"

	// ConditionEnumValue requires the resolved field to be a member of
	// the allowed-value set.
	ConditionEnumValue ConditionType = "enum_value"

	// ConditionEqualityMatch requires the resolved field to equal either
	// a literal value or a second resolved field, under normalized
	// comparison.
	ConditionEqualityMatch ConditionType = "equality_match"

	// ConditionConsistencyCheck is equality across two documents; it
	// shares equality semantics but reads as a cross-document check in
	// rule text.
	ConditionConsistencyCheck ConditionType = "consistency_check"

	// ConditionNumericRange requires the resolved numeric value to fall
	// within [Min, Max] inclusive.
	ConditionNumericRange ConditionType = "numeric_range"

	// ConditionDateOrder requires two resolved dates to satisfy an
	// ordering.
	ConditionDateOrder ConditionType = "date_order"

	// ConditionTimeConstraint bounds the elapsed days between two dates
	// (e.g. presentation within 21 days of shipment).
	ConditionTimeConstraint ConditionType = "time_constraint"

	// ConditionDocRequired requires a named document role to be present
	// in the context with at least one instance.
	ConditionDocRequired ConditionType = "doc_required"

	// ConditionSemanticCheck is a fuzzy comparison resolved by the
	// semantic injector before evaluation. The evaluator itself never
	// sees this type: injection rewrites it into an equality check
	// against the comparator verdict.
	ConditionSemanticCheck ConditionType = "semantic_check"
)

// DateOrder is the ordering requirement of a date_order condition,
// comparing the value at Field against the value at CompareField.
type DateOrder string

const (
	OrderBefore     DateOrder = "before"
	OrderAfter      DateOrder = "after"
	OrderNotBefore  DateOrder = "not_before"
	OrderNotAfter   DateOrder = "not_after"
	OrderSameDay    DateOrder = "same_day"
)

// Condition is one atomic check inside a rule. Conditions are owned by
// their parent rule and never shared.
//
// Which fields are meaningful depends on Type: Field is the primary path
// for every type except doc_required (which uses Document); CompareField
// or Value supplies the right-hand side for equality, consistency,
// date_order, time_constraint and semantic checks.
type Condition struct {
	Type ConditionType `json:"type"`

	// Field is the primary field path into the document tree.
	Field string `json:"field,omitempty"`

	// CompareField is a second field path for two-sided comparisons.
	CompareField string `json:"compare_field,omitempty"`

	// Value is a literal right-hand side for one-sided comparisons.
	Value any `json:"value,omitempty"`

	// AllowedValues is the membership set for enum_value conditions.
	AllowedValues []any `json:"allowed_values,omitempty"`

	// Min and Max bound numeric_range conditions (inclusive). A nil
	// bound is open.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// Order is the required ordering for date_order conditions.
	Order DateOrder `json:"order,omitempty"`

	// MaxDays bounds time_constraint conditions: the elapsed days from
	// Field to CompareField must not exceed it.
	MaxDays *int `json:"max_days,omitempty"`

	// Document names the required document role for doc_required.
	Document string `json:"document,omitempty"`

	// Threshold overrides the configured similarity threshold for
	// semantic checks. Zero means "use the configured default".
	Threshold float64 `json:"threshold,omitempty"`

	// Message is an optional template shown when the condition fails.
	Message string `json:"message,omitempty"`
}

// IsSemantic reports whether the condition needs the semantic injector.
func (c *Condition) IsSemantic() bool {
	return c.Type == ConditionSemanticCheck
}

// TwoSided reports whether the condition compares two resolved fields
// rather than a field against a literal.
func (c *Condition) TwoSided() bool {
	return c.CompareField != ""
}
