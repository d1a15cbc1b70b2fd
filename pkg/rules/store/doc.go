// Package store persists rulesets and rules and implements the
// import/governance path.
//
// The store is read-mostly: the evaluation pipeline only calls
// GetActiveRuleset, which returns exactly one or zero active rulesets for
// a (domain, jurisdiction) pair. The importer is the sole writer. A draft
// import only inserts rule IDs that do not exist yet, so a published
// ruleset can never be mutated by accident while a new draft is being
// prepared. Activation (publish or rollback) upserts the payload rules
// and atomically flips is_active so that exactly the target ruleset's
// rules are active for its domain and jurisdiction; readers never observe
// the flip half-applied because it runs in a single transaction.
//
// Two backends are provided: SQLiteStore for durable storage and
// MemoryStore for tests and embedded use.
package store
