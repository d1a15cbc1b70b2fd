package semantic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"lcopilot-hq/lcopilot/pkg/docs"
	"lcopilot-hq/lcopilot/pkg/rules/ast"
)

// ResultPrefix is the virtual field namespace the injector writes
// verdicts under. The evaluator resolves fields with this prefix from
// the results side-channel instead of the document tree.
const ResultPrefix = "_semantic."

// Results holds the verdicts computed during one injection pass, keyed
// by "<rule_id>#<condition_index>".
type Results map[string]*Verdict

// ResultKey builds the side-channel key for one condition.
func ResultKey(ruleID string, conditionIndex int) string {
	return fmt.Sprintf("%s#%d", ruleID, conditionIndex)
}

// Injector rewrites semantic_check conditions into deterministic
// equality checks by resolving each comparison up front.
type Injector struct {
	comparator Comparator
	logger     *slog.Logger
}

// NewInjector creates an injector over the given comparator. A nil
// comparator defaults to the fuzzy fallback.
func NewInjector(comparator Comparator, logger *slog.Logger) *Injector {
	if comparator == nil {
		comparator = NewFallbackComparator(0)
	}
	if logger == nil {
		logger = slog.Default().With("component", "semantic.injector")
	}
	return &Injector{comparator: comparator, logger: logger}
}

// Inject processes every semantic condition in the rule list and
// returns rewritten copies plus the verdict side-channel. The input
// rules and the document context are never mutated.
//
// Comparisons run sequentially: rule order is deterministic and the
// comparator applies its own rate limiting. A condition whose left
// field cannot be resolved gets no verdict; the rewritten condition
// then evaluates as not applicable rather than failing the rule.
func (in *Injector) Inject(ctx context.Context, rules []ast.Rule, docctx *docs.Context) ([]ast.Rule, Results) {
	results := make(Results)
	out := make([]ast.Rule, len(rules))

	for i := range rules {
		out[i] = rules[i]
		if !rules[i].HasSemanticConditions() {
			continue
		}

		conditions := make([]ast.Condition, len(rules[i].Conditions))
		copy(conditions, rules[i].Conditions)

		for j := range conditions {
			if !conditions[j].IsSemantic() {
				continue
			}
			conditions[j] = in.rewrite(ctx, &rules[i], j, conditions[j], docctx, results)
		}

		out[i].Conditions = conditions
	}

	if len(results) > 0 {
		in.logger.Debug("semantic conditions injected", "verdicts", len(results))
	}

	return out, results
}

// rewrite resolves one semantic condition and returns its deterministic
// replacement.
func (in *Injector) rewrite(ctx context.Context, rule *ast.Rule, index int, cond ast.Condition, docctx *docs.Context, results Results) ast.Condition {
	key := ResultKey(rule.RuleID, index)

	replacement := ast.Condition{
		Type:    ast.ConditionEqualityMatch,
		Field:   ResultPrefix + key + ".match",
		Value:   true,
		Message: cond.Message,
	}

	left, ok := resolveText(docctx, cond.Field)
	if !ok {
		in.logger.Debug("semantic left field unresolvable, leaving unanswered",
			"rule_id", rule.RuleID,
			"field", cond.Field,
		)
		return replacement
	}

	right, ok := rightHandText(docctx, cond)
	if !ok {
		in.logger.Debug("semantic right-hand side unresolvable, leaving unanswered",
			"rule_id", rule.RuleID,
			"compare_field", cond.CompareField,
		)
		return replacement
	}

	verdict, err := in.comparator.Compare(ctx, left, right, CompareOptions{
		Threshold: cond.Threshold,
		Documents: documentRoles(cond),
		Hint:      rule.Title,
	})
	if err != nil {
		// Comparator errors are treated the same as an unresolvable
		// field: the condition stays unanswered.
		in.logger.Warn("semantic comparison failed",
			"rule_id", rule.RuleID,
			"error", err,
		)
		return replacement
	}

	results[key] = verdict
	return replacement
}

// resolveText resolves a field path to comparison text. Non-string
// scalars are stringified; missing values and containers report false.
func resolveText(docctx *docs.Context, path string) (string, bool) {
	if path == "" {
		return "", false
	}
	value, ok := docctx.Resolve(path)
	if !ok || value == nil {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return v, v != ""
	case float64, int, int64, bool:
		return fmt.Sprintf("%v", v), true
	default:
		return "", false
	}
}

// rightHandText resolves the right-hand side: a second field when the
// condition is two-sided, the literal value otherwise.
func rightHandText(docctx *docs.Context, cond ast.Condition) (string, bool) {
	if cond.TwoSided() {
		return resolveText(docctx, cond.CompareField)
	}
	if cond.Value == nil {
		return "", false
	}
	switch v := cond.Value.(type) {
	case string:
		return v, v != ""
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// documentRoles extracts the document roles named by the condition's
// field paths (the first path segment).
func documentRoles(cond ast.Condition) []string {
	var roles []string
	for _, path := range []string{cond.Field, cond.CompareField} {
		if path == "" {
			continue
		}
		role := path
		if dot := strings.IndexByte(path, '.'); dot >= 0 {
			role = path[:dot]
		}
		roles = append(roles, role)
	}
	return roles
}
