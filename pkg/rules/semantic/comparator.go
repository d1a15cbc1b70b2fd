package semantic

import "context"

// Verdict source labels, recorded for audit and cache accounting.
const (
	SourceAI    = "ai"
	SourceFuzzy = "fuzzy"
	SourceCache = "cache"
)

// DefaultThreshold is the similarity cutoff used when neither the
// condition nor the configuration supplies one.
const DefaultThreshold = 0.85

// CompareOptions tunes a single comparison.
type CompareOptions struct {
	// Threshold is the similarity cutoff in [0,1]. Zero means use the
	// comparator's default.
	Threshold float64

	// Documents names the document roles the two values came from,
	// carried into the verdict for reporting.
	Documents []string

	// Hint is optional rule text giving the comparator context about
	// what "equivalent" means for this field (port names, party names,
	// goods descriptions).
	Hint string
}

// Verdict is the outcome of one semantic comparison.
type Verdict struct {
	// Match is the binary answer the rewritten condition tests.
	Match bool `json:"match"`

	// Expected and Found echo the two compared values.
	Expected string `json:"expected"`
	Found    string `json:"found"`

	// Score is the similarity in [0,1] when the comparator produces
	// one; AI verdicts may report 1 or 0.
	Score float64 `json:"score,omitempty"`

	// SuggestedFix is advisory text for discrepancy reports.
	SuggestedFix string `json:"suggested_fix,omitempty"`

	// Documents names the roles involved in the comparison.
	Documents []string `json:"documents,omitempty"`

	// Source records which comparator produced the verdict.
	Source string `json:"source"`
}

// Comparator decides whether two field values are semantically
// equivalent. Implementations must not return an error for a mere
// mismatch; errors mean the comparison itself could not be performed.
type Comparator interface {
	Compare(ctx context.Context, left, right string, opts CompareOptions) (*Verdict, error)
}

// effectiveThreshold picks the per-call threshold over the default.
func effectiveThreshold(opts CompareOptions, fallback float64) float64 {
	if opts.Threshold > 0 {
		return opts.Threshold
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultThreshold
}
