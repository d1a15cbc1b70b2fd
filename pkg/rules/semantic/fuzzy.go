package semantic

import (
	"context"
	"strings"
	"unicode"
)

// FallbackComparator is the deterministic comparator used when no AI
// provider is configured, and the degradation path when the AI provider
// fails. It blends token-set overlap with edit distance on normalized
// text, which handles the common trade-document variations: casing,
// punctuation, word order, and abbreviation noise like "Ltd." vs
// "Limited".
type FallbackComparator struct {
	// Threshold is the default cutoff when the caller supplies none.
	Threshold float64
}

// NewFallbackComparator creates a fuzzy comparator with the given
// default threshold (zero means DefaultThreshold).
func NewFallbackComparator(threshold float64) *FallbackComparator {
	return &FallbackComparator{Threshold: threshold}
}

// Compare scores the two values and returns a verdict. It never errors.
func (f *FallbackComparator) Compare(ctx context.Context, left, right string, opts CompareOptions) (*Verdict, error) {
	threshold := effectiveThreshold(opts, f.Threshold)
	score := Similarity(left, right)

	verdict := &Verdict{
		Match:     score >= threshold,
		Expected:  right,
		Found:     left,
		Score:     score,
		Documents: opts.Documents,
		Source:    SourceFuzzy,
	}
	if !verdict.Match {
		verdict.SuggestedFix = "align the field values across documents or amend the credit"
	}
	return verdict, nil
}

// Similarity scores two strings in [0,1]. Identical normalized text
// scores 1; disjoint text scores near 0. The score is the better of
// token-set Jaccard overlap and normalized edit distance, so both
// reordered word sets and near-miss spellings score high.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" && nb == "" {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	jaccard := tokenJaccard(na, nb)
	edit := 1 - float64(levenshtein(na, nb))/float64(max(len(na), len(nb)))

	if jaccard > edit {
		return jaccard
	}
	return edit
}

// Normalize lowercases, strips punctuation and collapses whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteByte(' ')
			lastSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}

func tokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(s) {
		set[token] = struct{}{}
	}
	return set
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}
