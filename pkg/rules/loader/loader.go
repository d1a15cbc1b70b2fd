package loader

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"lcopilot-hq/lcopilot/pkg/rules/ast"
	"lcopilot-hq/lcopilot/pkg/rules/store"
)

// GlobalJurisdiction is the fallback jurisdiction for ICC domains.
const GlobalJurisdiction = "global"

// iccPrefix marks domains eligible for the jurisdiction fallback.
// Non-ICC domains (sanctions, regulatory) deliberately do not fall back.
const iccPrefix = "icc."

// Provenance is the per-domain snapshot tying loaded rules back to the
// exact ruleset that produced them.
type Provenance struct {
	RulesetID       string `json:"ruleset_id"`
	RulesetVersion  string `json:"ruleset_version"`
	RulebookVersion string `json:"rulebook_version,omitempty"`
	Domain          string `json:"domain"`

	// Jurisdiction is the requested jurisdiction;
	// EffectiveJurisdiction is the one the ruleset was actually found
	// under (differs when the ICC global fallback applied).
	Jurisdiction          string `json:"jurisdiction"`
	EffectiveJurisdiction string `json:"effective_jurisdiction"`

	RuleCountUsed int `json:"rule_count_used"`
}

// RuleWithMeta pairs a rule with the provenance of the ruleset it was
// loaded from.
type RuleWithMeta struct {
	Rule ast.Rule
	Meta Provenance
}

// Result is the output of one load: the flat ordered rule list, the
// primary domain's metadata, and one provenance record per domain that
// actually resolved, in resolution order.
type Result struct {
	Rules        []RuleWithMeta
	BaseMetadata Provenance
	Provenance   []Provenance

	// Domains is the requested domain sequence, primary first,
	// including supplements that did not resolve.
	Domains []string

	// Skipped lists supplement domains that had no active ruleset and
	// were dropped from the run.
	Skipped []string
}

// Loader loads rules for a resolved domain sequence.
type Loader struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a Loader over the given store.
func New(s store.Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default().With("component", "rules.loader")
	}
	return &Loader{store: s, logger: logger}
}

// LoadRulesWithProvenance loads the active rulesets for the domain
// sequence.
//
// The primary (first) domain is fail-closed: a missing ruleset aborts the
// load with RulesetUnavailableError before any evaluation work begins.
// ICC primaries retry once against the "global" jurisdiction before
// failing. Supplement domains are best-effort: a miss is logged and the
// load continues with whatever resolved.
func (l *Loader) LoadRulesWithProvenance(ctx context.Context, domains []string, jurisdiction, documentType string) (*Result, error) {
	if len(domains) == 0 {
		return nil, &RulesetUnavailableError{Jurisdiction: jurisdiction}
	}
	if jurisdiction == "" {
		jurisdiction = GlobalJurisdiction
	}

	result := &Result{Domains: domains}

	for i, domain := range domains {
		primary := i == 0

		active, effective, err := l.fetch(ctx, domain, jurisdiction, documentType)
		if err != nil {
			if primary {
				return nil, err
			}
			// Supplements degrade gracefully; the provenance list will
			// show the domain did not contribute.
			l.logger.Warn("supplement ruleset unavailable, skipping",
				"domain", domain,
				"jurisdiction", jurisdiction,
				"error", err,
			)
			result.Skipped = append(result.Skipped, domain)
			continue
		}

		meta := Provenance{
			RulesetID:             active.Ruleset.ID,
			RulesetVersion:        active.Ruleset.Version,
			RulebookVersion:       active.Ruleset.RulebookVersion,
			Domain:                domain,
			Jurisdiction:          jurisdiction,
			EffectiveJurisdiction: effective,
			RuleCountUsed:         len(active.Rules),
		}

		if primary {
			result.BaseMetadata = meta
		}
		result.Provenance = append(result.Provenance, meta)

		for _, rule := range active.Rules {
			result.Rules = append(result.Rules, RuleWithMeta{Rule: rule, Meta: meta})
		}
	}

	l.logger.Info("rules loaded",
		"domains", domains,
		"jurisdiction", jurisdiction,
		"effective_jurisdiction", result.BaseMetadata.EffectiveJurisdiction,
		"rule_count", len(result.Rules),
		"domains_resolved", len(result.Provenance),
	)

	return result, nil
}

// fetch looks up the active ruleset for one domain, applying the ICC
// jurisdiction fallback. Returns the jurisdiction the ruleset was found
// under.
func (l *Loader) fetch(ctx context.Context, domain, jurisdiction, documentType string) (*store.ActiveRuleset, string, error) {
	active, err := l.store.GetActiveRuleset(ctx, domain, jurisdiction, documentType)
	if err == nil {
		return active, jurisdiction, nil
	}
	if !errors.Is(err, store.ErrNoActiveRuleset) {
		return nil, "", err
	}

	// ICC rulebooks are published globally; a jurisdiction without its
	// own tailored ruleset falls back to the global one.
	if strings.HasPrefix(domain, iccPrefix) && jurisdiction != GlobalJurisdiction {
		l.logger.Info("no jurisdiction-specific ruleset, retrying global",
			"domain", domain,
			"jurisdiction", jurisdiction,
		)
		active, err = l.store.GetActiveRuleset(ctx, domain, GlobalJurisdiction, documentType)
		if err == nil {
			return active, GlobalJurisdiction, nil
		}
		if !errors.Is(err, store.ErrNoActiveRuleset) {
			return nil, "", err
		}
		return nil, "", &RulesetUnavailableError{
			Domain:       domain,
			Jurisdiction: jurisdiction,
			TriedGlobal:  true,
			Cause:        err,
		}
	}

	return nil, "", &RulesetUnavailableError{
		Domain:       domain,
		Jurisdiction: jurisdiction,
		Cause:        err,
	}
}
