// Package loader fetches the active rulesets for a resolved domain
// sequence and tracks the provenance of every rule it returns.
//
// The first domain in the sequence is the primary rulebook and loads
// fail-closed: if no active ruleset exists (after the ICC jurisdiction
// fallback to "global"), loading stops with RulesetUnavailableError and
// no evaluation happens. Every later domain is a supplement and loads
// best-effort: a missing supplement is logged and skipped.
//
// Rules from all resolved domains are concatenated in domain order.
// Duplicate rule IDs across domains are kept and evaluated independently;
// later domains never shadow earlier ones.
package loader
