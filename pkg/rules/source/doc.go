// Package source loads ruleset bundles from disk and feeds them into
// the rule store.
//
// A bundle is a YAML or JSON file carrying one ruleset descriptor plus
// its rules. Operators drop bundle files into the drafts directory; the
// watcher picks them up and imports them in draft mode, where they sit
// inert until an administrator activates them.
package source
