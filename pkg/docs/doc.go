// Package docs defines the document context model used by the rule engine.
//
// A document context is a nested tree of values keyed by document role
// ("lc", "invoice", "bill_of_lading", ...) plus cross-cutting keys such as
// the resolved domain and jurisdiction. The tree is built once per
// validation request from extracted document data and treated as read-only
// by the engine.
//
// Field paths use dot notation with optional bracket indexes:
//
//	lc.amount
//	lc.parties.beneficiary.name
//	invoice.line_items[0].description
//
// Path resolution never fails: a path that cannot be walked (missing key,
// index out of range, scalar in the middle of the path) resolves to
// "absent", reported through the boolean second return value. This is the
// contract the condition evaluator relies on to distinguish a rule that
// does not apply from a rule that failed.
package docs
