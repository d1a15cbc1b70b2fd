package router

import "regexp"

// DetectionTable is the data driving domain detection: which text fields
// to scan, which patterns mark each rulebook, and the priority order used
// to break ties. A table is immutable once built; construct variants with
// DefaultTable and adjust before creating the Router.
type DetectionTable struct {
	// ScanFields are the document tree paths whose text is searched for
	// rulebook markers.
	ScanFields []string

	// Primary lists the primary-rulebook patterns in priority order.
	// The first entry whose pattern matches wins.
	Primary []DomainPattern

	// Supplements lists supplement patterns layered on top of the
	// primary domain.
	Supplements []SupplementPattern

	// DefaultDomain is used when nothing matches.
	DefaultDomain string

	// CrossDocDomain is appended to every ICC-primary sequence.
	CrossDocDomain string
}

// DomainPattern ties a rulebook domain to its text markers.
type DomainPattern struct {
	Domain  string
	Pattern *regexp.Regexp
}

// SupplementPattern ties a supplement domain to its markers and,
// optionally, to the primary domains it may supplement.
type SupplementPattern struct {
	Domain  string
	Pattern *regexp.Regexp

	// RequiresPrimary restricts the supplement to the listed primary
	// domains. Empty means any primary.
	RequiresPrimary []string
}

// Rulebook markers, case-insensitive and tolerant of spacing and hyphens
// ("UCP 600", "ucp-600", "eUCP v2.1", "eUCP latest version").
var (
	reISP98   = regexp.MustCompile(`(?i)\bisp[\s-]*98\b`)
	reURDG758 = regexp.MustCompile(`(?i)\burdg[\s-]*758\b|\bdemand\s+guarantee`)
	reUCP600  = regexp.MustCompile(`(?i)\bucp[\s-]*600\b`)
	reURC522  = regexp.MustCompile(`(?i)\burc[\s-]*522\b|\bdocumentary\s+collection`)
	reEUCP    = regexp.MustCompile(`(?i)\beucp\b`)
	reURR725  = regexp.MustCompile(`(?i)\burr[\s-]*725\b`)
)

// DefaultTable returns the standard detection table.
//
// Priority when several primaries match: ISP98 over URDG758 over UCP600
// over URC522, with UCP600 as the default. Standby letters frequently
// quote UCP600 boilerplate next to an ISP98 clause, so the standby
// rulebook outranks the commercial one.
func DefaultTable() *DetectionTable {
	return &DetectionTable{
		ScanFields: []string{
			"lc.applicable_rules",
			"lc.form_of_documentary_credit",
			"lc.instrument_type",
			"lc.narrative",
			"lc.additional_conditions",
			"lc.reimbursement_instructions",
		},
		Primary: []DomainPattern{
			{Domain: DomainISP98, Pattern: reISP98},
			{Domain: DomainURDG758, Pattern: reURDG758},
			{Domain: DomainUCP600, Pattern: reUCP600},
			{Domain: DomainURC522, Pattern: reURC522},
		},
		Supplements: []SupplementPattern{
			{
				Domain:          DomainEUCP,
				Pattern:         reEUCP,
				RequiresPrimary: []string{DomainUCP600},
			},
			{
				Domain:  DomainURR725,
				Pattern: reURR725,
			},
		},
		DefaultDomain:  DomainUCP600,
		CrossDocDomain: DomainCrossDoc,
	}
}

// instrumentHints maps instrument-type metadata values to a primary
// domain, used when the free text carries no rulebook clause.
var instrumentHints = map[string]string{
	"standby":    DomainISP98,
	"guarantee":  DomainURDG758,
	"collection": DomainURC522,
	"commercial": DomainUCP600,
}
