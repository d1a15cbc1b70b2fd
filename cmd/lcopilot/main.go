// LC Copilot resolves and evaluates trade-finance compliance rules
// against extracted document data.
//
// It loads the active ruleset for the detected rulebook (UCP 600,
// ISP98, URDG 758, URC 522 and their supplements), evaluates each
// rule's conditions against the presented documents and produces a
// compliance report with per-rule outcomes and provenance.
//
// Usage:
//
//	# Validate a document payload against the active rulesets
//	lcopilot validate --documents presentation.json
//
//	# Import a ruleset bundle as a draft
//	lcopilot rules import --file ucp600.yaml
//
//	# Publish a ruleset, flipping the active version for its scope
//	lcopilot rules activate --file ucp600.yaml
//
//	# Run the drafts watcher and telemetry endpoints
//	lcopilot serve
//
//	# Show version information
//	lcopilot version
package main

func main() {
	Execute()
}
