// Package health implements liveness and readiness probes for the
// serve mode.
//
// Liveness (/health) answers 200 whenever the process runs. Readiness
// (/ready) executes registered component probes, typically a ping of
// the rule store and audit databases, and answers 503 with per-check
// detail when any probe fails. A /version endpoint reports build
// information.
package health
