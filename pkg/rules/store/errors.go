package store

import "fmt"

// StorageError wraps a backend failure with the backend name and the
// operation that failed.
type StorageError struct {
	Backend string
	Op      string
	Cause   error
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, op string, cause error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Cause: cause}
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("rule store %s: %s failed: %v", e.Backend, e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// AmbiguousRulesetError indicates the single-active invariant is broken:
// more than one active ruleset exists for a domain and jurisdiction.
type AmbiguousRulesetError struct {
	Domain       string
	Jurisdiction string
	Count        int
}

// Error implements the error interface.
func (e *AmbiguousRulesetError) Error() string {
	return fmt.Sprintf("found %d active rulesets for domain %q jurisdiction %q, expected at most one",
		e.Count, e.Domain, e.Jurisdiction)
}
