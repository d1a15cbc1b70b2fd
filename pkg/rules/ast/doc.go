// Package ast defines the rule data model shared by the loader, the
// evaluation engine, and the rule store.
//
// A Ruleset is a versioned bundle of rules scoped to a rulebook domain
// (e.g. "icc.ucp600") and a jurisdiction (e.g. "global", "bd"). A Rule is
// one testable compliance requirement carrying an ordered list of
// Conditions drawn from a fixed vocabulary. Rules travel as JSON between
// the authoring pipeline, the store, and the engine; the content checksum
// is computed over the normalized JSON form so change detection is exact
// regardless of key order or governance state.
package ast
