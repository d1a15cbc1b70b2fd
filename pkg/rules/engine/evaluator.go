package engine

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"lcopilot-hq/lcopilot/pkg/docs"
	"lcopilot-hq/lcopilot/pkg/rules/ast"
	"lcopilot-hq/lcopilot/pkg/rules/semantic"
)

// DefaultAmountTolerance absorbs rounding noise when comparing monetary
// amounts extracted from different documents.
const DefaultAmountTolerance = 0.01

// dateLayouts are the formats document extraction produces, tried in
// order. SWIFT-style YYMMDD is deliberately absent: two-digit years are
// too ambiguous to guess at evaluation time.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"20060102",
	"02 Jan 2006",
	"January 2, 2006",
}

// Evaluator runs rule conditions against a document context. It only
// ever sees the closed deterministic vocabulary; semantic conditions
// must be rewritten by the injector first.
type Evaluator struct {
	// tolerance is the absolute numeric tolerance for equality between
	// two numbers.
	tolerance float64

	logger *slog.Logger
}

// NewEvaluator creates an evaluator. A non-positive tolerance uses
// DefaultAmountTolerance.
func NewEvaluator(tolerance float64, logger *slog.Logger) *Evaluator {
	if tolerance <= 0 {
		tolerance = DefaultAmountTolerance
	}
	if logger == nil {
		logger = slog.Default().With("component", "rules.evaluator")
	}
	return &Evaluator{tolerance: tolerance, logger: logger}
}

// EvaluateRule runs every condition of one rule. The rule passes when
// all decidable conditions hold, fails on the first violated condition
// semantics (all conditions are still evaluated for the report), and is
// not applicable when nothing could be decided.
func (e *Evaluator) EvaluateRule(rule *ast.Rule, docctx *docs.Context, verdicts semantic.Results) (RuleStatus, []ConditionResult) {
	if len(rule.Conditions) == 0 {
		return StatusNotApplicable, nil
	}

	results := make([]ConditionResult, 0, len(rule.Conditions))
	anyFailed := false
	anyDecided := false

	for i := range rule.Conditions {
		result := e.evaluateCondition(i, &rule.Conditions[i], docctx, verdicts)
		results = append(results, result)

		switch result.Status {
		case StatusFailed:
			anyFailed = true
			anyDecided = true
		case StatusPassed:
			anyDecided = true
		}
	}

	switch {
	case anyFailed:
		return StatusFailed, results
	case anyDecided:
		return StatusPassed, results
	default:
		return StatusNotApplicable, results
	}
}

// evaluateCondition dispatches on the condition type. Unknown types
// fail: a rule asking for something the engine cannot check must not
// silently pass.
func (e *Evaluator) evaluateCondition(index int, cond *ast.Condition, docctx *docs.Context, verdicts semantic.Results) ConditionResult {
	result := ConditionResult{
		Index:   index,
		Type:    cond.Type,
		Field:   cond.Field,
		Message: cond.Message,
	}

	switch cond.Type {
	case ast.ConditionFieldPresence:
		e.evaluateFieldPresence(cond, docctx, &result)
	case ast.ConditionEnumValue:
		e.evaluateEnumValue(cond, docctx, verdicts, &result)
	case ast.ConditionEqualityMatch, ast.ConditionConsistencyCheck:
		e.evaluateEquality(cond, docctx, verdicts, &result)
	case ast.ConditionNumericRange:
		e.evaluateNumericRange(cond, docctx, verdicts, &result)
	case ast.ConditionDateOrder:
		e.evaluateDateOrder(cond, docctx, &result)
	case ast.ConditionTimeConstraint:
		e.evaluateTimeConstraint(cond, docctx, &result)
	case ast.ConditionDocRequired:
		e.evaluateDocRequired(cond, docctx, &result)
	default:
		result.Status = StatusFailed
		if result.Message == "" {
			result.Message = fmt.Sprintf("unsupported condition type %q", cond.Type)
		}
	}

	return result
}

// resolve looks up a field path, routing the semantic side-channel
// namespace to the verdict map instead of the document tree.
func (e *Evaluator) resolve(path string, docctx *docs.Context, verdicts semantic.Results) (any, bool) {
	if !strings.HasPrefix(path, semantic.ResultPrefix) {
		return docctx.Resolve(path)
	}

	// "_semantic.<rule_id>#<index>.match"
	rest := strings.TrimPrefix(path, semantic.ResultPrefix)
	key, attr, ok := strings.Cut(rest, ".")
	if !ok {
		return nil, false
	}
	verdict, found := verdicts[key]
	if !found {
		return nil, false
	}

	switch attr {
	case "match":
		return verdict.Match, true
	case "score":
		return verdict.Score, true
	default:
		return nil, false
	}
}

func (e *Evaluator) evaluateFieldPresence(cond *ast.Condition, docctx *docs.Context, result *ConditionResult) {
	value, ok := docctx.Resolve(cond.Field)
	if !ok || isEmpty(value) {
		result.Status = StatusFailed
		result.Expected = "present"
		if result.Message == "" {
			result.Message = fmt.Sprintf("required field %s is missing", cond.Field)
		}
		return
	}
	result.Status = StatusPassed
}

func (e *Evaluator) evaluateEnumValue(cond *ast.Condition, docctx *docs.Context, verdicts semantic.Results, result *ConditionResult) {
	value, ok := e.resolve(cond.Field, docctx, verdicts)
	if !ok || value == nil {
		result.Status = StatusNotApplicable
		return
	}

	result.Actual = value
	result.Expected = cond.AllowedValues

	for _, allowed := range cond.AllowedValues {
		if e.valuesEqual(value, allowed) {
			result.Status = StatusPassed
			return
		}
	}

	result.Status = StatusFailed
	if result.Message == "" {
		result.Message = fmt.Sprintf("%s has value %v, not in the allowed set", cond.Field, value)
	}
}

func (e *Evaluator) evaluateEquality(cond *ast.Condition, docctx *docs.Context, verdicts semantic.Results, result *ConditionResult) {
	left, ok := e.resolve(cond.Field, docctx, verdicts)
	if !ok || left == nil {
		result.Status = StatusNotApplicable
		return
	}

	var right any
	if cond.TwoSided() {
		right, ok = e.resolve(cond.CompareField, docctx, verdicts)
		if !ok || right == nil {
			result.Status = StatusNotApplicable
			return
		}
	} else {
		right = cond.Value
	}

	result.Actual = left
	result.Expected = right

	if e.valuesEqual(left, right) {
		result.Status = StatusPassed
		return
	}

	result.Status = StatusFailed
	if result.Message == "" {
		result.Message = fmt.Sprintf("%s does not match: got %v, want %v", cond.Field, left, right)
	}
}

func (e *Evaluator) evaluateNumericRange(cond *ast.Condition, docctx *docs.Context, verdicts semantic.Results, result *ConditionResult) {
	value, ok := e.resolve(cond.Field, docctx, verdicts)
	if !ok || value == nil {
		result.Status = StatusNotApplicable
		return
	}

	num, ok := toFloat(value)
	if !ok {
		result.Status = StatusFailed
		result.Actual = value
		if result.Message == "" {
			result.Message = fmt.Sprintf("%s is not numeric: %v", cond.Field, value)
		}
		return
	}

	result.Actual = num
	result.Expected = rangeText(cond.Min, cond.Max)

	if cond.Min != nil && num < *cond.Min {
		result.Status = StatusFailed
		if result.Message == "" {
			result.Message = fmt.Sprintf("%s = %v is below the minimum %v", cond.Field, num, *cond.Min)
		}
		return
	}
	if cond.Max != nil && num > *cond.Max {
		result.Status = StatusFailed
		if result.Message == "" {
			result.Message = fmt.Sprintf("%s = %v exceeds the maximum %v", cond.Field, num, *cond.Max)
		}
		return
	}

	result.Status = StatusPassed
}

func (e *Evaluator) evaluateDateOrder(cond *ast.Condition, docctx *docs.Context, result *ConditionResult) {
	left, okL := e.resolveDate(cond.Field, docctx)
	right, okR := e.resolveDate(cond.CompareField, docctx)
	if !okL || !okR {
		result.Status = StatusNotApplicable
		return
	}

	result.Actual = left.Format("2006-01-02")
	result.Expected = fmt.Sprintf("%s %s", cond.Order, right.Format("2006-01-02"))

	var holds bool
	switch cond.Order {
	case ast.OrderBefore:
		holds = left.Before(right)
	case ast.OrderAfter:
		holds = left.After(right)
	case ast.OrderNotBefore:
		holds = !left.Before(right)
	case ast.OrderNotAfter:
		holds = !left.After(right)
	case ast.OrderSameDay:
		holds = sameDay(left, right)
	default:
		result.Status = StatusFailed
		if result.Message == "" {
			result.Message = fmt.Sprintf("unknown date order %q", cond.Order)
		}
		return
	}

	if holds {
		result.Status = StatusPassed
		return
	}
	result.Status = StatusFailed
	if result.Message == "" {
		result.Message = fmt.Sprintf("%s (%s) must be %s %s (%s)",
			cond.Field, left.Format("2006-01-02"), cond.Order, cond.CompareField, right.Format("2006-01-02"))
	}
}

func (e *Evaluator) evaluateTimeConstraint(cond *ast.Condition, docctx *docs.Context, result *ConditionResult) {
	if cond.MaxDays == nil {
		result.Status = StatusNotApplicable
		return
	}

	start, okS := e.resolveDate(cond.Field, docctx)
	end, okE := e.resolveDate(cond.CompareField, docctx)
	if !okS || !okE {
		result.Status = StatusNotApplicable
		return
	}

	elapsed := daysBetween(start, end)
	result.Actual = elapsed
	result.Expected = fmt.Sprintf("<= %d days", *cond.MaxDays)

	if elapsed > *cond.MaxDays {
		result.Status = StatusFailed
		if result.Message == "" {
			result.Message = fmt.Sprintf("%d days elapsed from %s to %s, limit is %d",
				elapsed, cond.Field, cond.CompareField, *cond.MaxDays)
		}
		return
	}

	result.Status = StatusPassed
}

func (e *Evaluator) evaluateDocRequired(cond *ast.Condition, docctx *docs.Context, result *ConditionResult) {
	result.Field = cond.Document
	result.Expected = "present"

	if docctx.HasDocument(cond.Document) {
		result.Status = StatusPassed
		return
	}

	result.Status = StatusFailed
	if result.Message == "" {
		result.Message = fmt.Sprintf("required document %q was not presented", cond.Document)
	}
}

// resolveDate resolves a field and parses it as a date.
func (e *Evaluator) resolveDate(path string, docctx *docs.Context) (time.Time, bool) {
	value, ok := docctx.Resolve(path)
	if !ok || value == nil {
		return time.Time{}, false
	}
	s, ok := value.(string)
	if !ok {
		return time.Time{}, false
	}
	return parseDate(s)
}

// valuesEqual compares two values with type-aware normalization:
// numbers within tolerance, strings case-insensitively with collapsed
// whitespace, everything else by direct equality.
func (e *Evaluator) valuesEqual(a, b any) bool {
	if na, okA := toFloat(a); okA {
		if nb, okB := toFloat(b); okB {
			diff := na - nb
			if diff < 0 {
				diff = -diff
			}
			return diff <= e.tolerance
		}
	}

	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return normalizeString(sa) == normalizeString(sb)
	}

	return a == b
}

// normalizeString lowercases, trims and collapses inner whitespace.
func normalizeString(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// toFloat coerces numeric JSON shapes to float64. Strings are parsed so
// amounts extracted as text still compare numerically; booleans do not
// coerce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// isEmpty reports whether a resolved value counts as absent for
// field_presence.
func isEmpty(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(value) == ""
	case []any:
		return len(value) == 0
	case map[string]any:
		return len(value) == 0
	default:
		return false
	}
}

// parseDate tries the supported layouts in order.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func sameDay(a, b time.Time) bool {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	return ya == yb && ma == mb && da == db
}

// daysBetween counts whole calendar days from start to end. A negative
// count means end precedes start.
func daysBetween(start, end time.Time) int {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

func rangeText(min, max *float64) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("[%v, %v]", *min, *max)
	case min != nil:
		return fmt.Sprintf(">= %v", *min)
	case max != nil:
		return fmt.Sprintf("<= %v", *max)
	default:
		return "any"
	}
}
