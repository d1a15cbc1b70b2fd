// Package router resolves which rulebook domains apply to a validation
// request.
//
// Detection is keyword-driven: a fixed set of document text fields and
// metadata hints is scanned for rulebook markers ("ISP98", "UCP 600",
// "eUCP", "URR725", ...), case-insensitively and tolerant of spacing and
// hyphens. When several rulebooks match, a documented priority order
// breaks the tie; this is deliberate behavior, not an error. The keyword
// and priority tables are plain data so jurisdiction-specific overrides
// need no code changes.
//
// The router returns an ordered, duplicate-free domain sequence, primary
// first, with supplement domains (eUCP, URR725, the cross-document
// checks) appended after the primary. Resolution is pure and idempotent:
// the same document context always yields the same sequence.
package router
