package ast

import "time"

// RulesetStatus is the lifecycle state of a ruleset.
type RulesetStatus string

const (
	// StatusDraft is a ruleset uploaded by an administrator but not yet
	// published. Draft rules never shadow active ones.
	StatusDraft RulesetStatus = "draft"

	// StatusActive is the single published ruleset for its domain and
	// jurisdiction.
	StatusActive RulesetStatus = "active"

	// StatusArchived is a superseded ruleset kept for provenance.
	StatusArchived RulesetStatus = "archived"
)

// Ruleset identifies a versioned, domain- and jurisdiction-scoped
// collection of rules.
//
// Invariant: at most one ruleset per (domain, jurisdiction) is active at
// any time. The importer's activate path is the only writer that flips
// this state, and it does so inside a single transaction.
type Ruleset struct {
	// ID is the unique ruleset identifier.
	ID string `json:"ruleset_id" yaml:"ruleset_id"`

	// Domain is the rulebook family, e.g. "icc.ucp600".
	Domain string `json:"domain" yaml:"domain"`

	// Jurisdiction scopes the ruleset, e.g. "global" or "bd".
	Jurisdiction string `json:"jurisdiction" yaml:"jurisdiction"`

	// Version is the ruleset's semantic version, e.g. "1.4.0".
	Version string `json:"ruleset_version" yaml:"ruleset_version"`

	// RulebookVersion names the underlying publication,
	// e.g. "UCP600:2007".
	RulebookVersion string `json:"rulebook_version" yaml:"rulebook_version"`

	// Status is the lifecycle state.
	Status RulesetStatus `json:"status" yaml:"status"`

	// Location is the file or object reference the ruleset was ingested
	// from.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// RuleCount is the number of rules in the bundle.
	RuleCount int `json:"rule_count" yaml:"rule_count"`

	CreatedAt   time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	ActivatedAt time.Time `json:"activated_at,omitempty" yaml:"activated_at,omitempty"`
}

// IsActive reports whether the ruleset is the published one for its
// domain and jurisdiction.
func (rs *Ruleset) IsActive() bool {
	return rs.Status == StatusActive
}
