package loader

import "fmt"

// RulesetUnavailableError reports a domain with no active ruleset even
// after the jurisdiction fallback. For the primary domain it is the
// fatal, fail-closed failure and must propagate to the caller and block
// validation; for supplements the loader logs it and moves on.
type RulesetUnavailableError struct {
	Domain       string
	Jurisdiction string

	// TriedGlobal is true when the "global" fallback was attempted too.
	TriedGlobal bool

	Cause error
}

// Error implements the error interface.
func (e *RulesetUnavailableError) Error() string {
	if e.TriedGlobal {
		return fmt.Sprintf("no active ruleset for domain %q in jurisdiction %q or global",
			e.Domain, e.Jurisdiction)
	}
	return fmt.Sprintf("no active ruleset for domain %q in jurisdiction %q",
		e.Domain, e.Jurisdiction)
}

// Unwrap returns the underlying store error.
func (e *RulesetUnavailableError) Unwrap() error {
	return e.Cause
}
