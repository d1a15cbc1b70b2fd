// Package audit records structured governance and evaluation events.
//
// The rule executor and the rules importer emit events describing what
// was evaluated or changed, scoped to a rule or ruleset and its domain
// and jurisdiction. Sinks are pluggable: SQLiteSink provides a durable
// trail with scheduled retention pruning, MemorySink backs tests, and
// NopSink disables auditing entirely. Recording is best-effort from the
// caller's perspective; a failing sink is logged and never blocks
// validation or imports.
package audit
