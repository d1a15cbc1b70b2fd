// Package engine evaluates compliance rules against a document context
// and produces a verdict report.
//
// The Engine facade drives the full pipeline: the router resolves which
// rulebook domains apply, the loader fetches their active rulesets
// fail-closed, the semantic injector answers fuzzy comparisons, and the
// evaluator runs every condition deterministically. A presentation is
// compliant when no applicable rule of severity fail is broken,
// discrepant when one is, and blocked when the primary ruleset cannot
// be loaded at all.
package engine
