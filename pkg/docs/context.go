package docs

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Context is the input to a single validation request. It carries the
// document data tree plus the routing metadata attached by the caller.
// The engine treats a Context as immutable; computed semantic verdicts are
// returned in a separate side-channel map rather than written back into
// the tree.
type Context struct {
	// Documents is the nested document data, keyed by document role
	// ("lc", "invoice", "bill_of_lading", ...).
	Documents Tree

	// Domain, when set by the caller, overrides keyword-based rulebook
	// detection.
	Domain string

	// Jurisdiction selects the jurisdiction-scoped ruleset ("global",
	// "bd", ...). Empty means "global".
	Jurisdiction string

	// DocumentType narrows rule selection to one document kind.
	// Empty means all kinds.
	DocumentType string
}

// NewContext creates a Context over the given document tree.
func NewContext(documents Tree) *Context {
	if documents == nil {
		documents = Tree{}
	}
	return &Context{Documents: documents}
}

// ParseContext builds a Context from a JSON document payload, the shape
// produced by the extraction pipeline. Top-level keys become document
// roles.
func ParseContext(data []byte) (*Context, error) {
	var tree Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse document payload: %w", err)
	}
	return NewContext(tree), nil
}

// Resolve resolves a field path against the document tree.
func (c *Context) Resolve(path string) (any, bool) {
	return c.Documents.Resolve(path)
}

// HasDocument reports whether the named document role is present with at
// least one instance. A role mapped to an empty list or nil counts as
// absent.
func (c *Context) HasDocument(role string) bool {
	value, ok := c.Documents.Resolve(role)
	if !ok || value == nil {
		return false
	}
	switch v := value.(type) {
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case string:
		return v != ""
	default:
		return true
	}
}

// DocumentRoles returns the sorted document roles present in the context.
func (c *Context) DocumentRoles() []string {
	roles := make([]string, 0, len(c.Documents))
	for role := range c.Documents {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// EffectiveJurisdiction returns the jurisdiction, defaulting to "global".
func (c *Context) EffectiveJurisdiction() string {
	if c.Jurisdiction == "" {
		return "global"
	}
	return c.Jurisdiction
}
