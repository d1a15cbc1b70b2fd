package router

import (
	"log/slog"
	"strings"

	"lcopilot-hq/lcopilot/pkg/docs"
)

// Router resolves the ordered domain sequence for a document context.
type Router struct {
	table  *DetectionTable
	logger *slog.Logger
}

// New creates a Router over the given detection table. A nil table uses
// DefaultTable.
func New(table *DetectionTable, logger *slog.Logger) *Router {
	if table == nil {
		table = DefaultTable()
	}
	if logger == nil {
		logger = slog.Default().With("component", "rules.router")
	}
	return &Router{table: table, logger: logger}
}

// ResolveDomainSequence returns the ordered, duplicate-free list of
// rulebook domains for the context, primary first. Resolution is pure:
// the same context always produces the same sequence.
func (r *Router) ResolveDomainSequence(dc *docs.Context) []string {
	text := r.collectText(dc)

	primary := r.resolvePrimary(dc, text)
	sequence := []string{primary}

	// Layer supplements detected in the text.
	for _, supp := range r.table.Supplements {
		if !supp.Pattern.MatchString(text) {
			continue
		}
		if len(supp.RequiresPrimary) > 0 && !containsString(supp.RequiresPrimary, primary) {
			r.logger.Debug("supplement markers present but primary does not qualify",
				"supplement", supp.Domain,
				"primary", primary,
			)
			continue
		}
		sequence = append(sequence, supp.Domain)
	}

	// Cross-document checks ride along with every ICC rulebook,
	// including caller-supplied domains.
	if strings.HasPrefix(primary, ICCPrefix) && r.table.CrossDocDomain != "" {
		sequence = append(sequence, r.table.CrossDocDomain)
	}

	sequence = dedupe(sequence)

	r.logger.Info("resolved domain sequence",
		"primary", primary,
		"sequence", sequence,
		"jurisdiction", dc.EffectiveJurisdiction(),
	)

	return sequence
}

// resolvePrimary picks the primary rulebook domain. A caller-supplied
// domain always wins; otherwise the keyword table decides, then the
// instrument-type hint, then the default.
func (r *Router) resolvePrimary(dc *docs.Context, text string) string {
	if dc.Domain != "" {
		r.logger.Debug("domain supplied by caller, skipping detection", "domain", dc.Domain)
		return dc.Domain
	}

	var matched []string
	for _, p := range r.table.Primary {
		if p.Pattern.MatchString(text) {
			matched = append(matched, p.Domain)
		}
	}

	if len(matched) > 1 {
		// Multiple rulebooks quoted in one instrument. The priority
		// order of the table is the documented tie-break.
		r.logger.Warn("multiple rulebook markers detected, applying priority order",
			"matched", matched,
			"selected", matched[0],
		)
	}
	if len(matched) > 0 {
		return matched[0]
	}

	if hint, ok := r.instrumentHint(dc); ok {
		r.logger.Debug("no rulebook clause found, using instrument-type hint", "domain", hint)
		return hint
	}

	r.logger.Debug("no rulebook markers found, using default", "domain", r.table.DefaultDomain)
	return r.table.DefaultDomain
}

// instrumentHint maps the lc.instrument_type metadata value to a domain.
func (r *Router) instrumentHint(dc *docs.Context) (string, bool) {
	value, ok := dc.Documents.ResolveString("lc.instrument_type")
	if !ok {
		return "", false
	}
	domain, ok := instrumentHints[strings.ToLower(strings.TrimSpace(value))]
	return domain, ok
}

// collectText joins the configured scan fields into one searchable blob.
func (r *Router) collectText(dc *docs.Context) string {
	var b strings.Builder
	for _, field := range r.table.ScanFields {
		if value, ok := dc.Documents.ResolveString(field); ok && value != "" {
			b.WriteString(value)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func dedupe(domains []string) []string {
	seen := make(map[string]struct{}, len(domains))
	out := domains[:0]
	for _, d := range domains {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
