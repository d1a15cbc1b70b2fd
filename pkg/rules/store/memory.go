package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"lcopilot-hq/lcopilot/pkg/rules/ast"
)

// MemoryStore is an in-memory Admin implementation used in tests and
// embedded deployments. It honors the same governance semantics as the
// SQLite backend; the single mutex stands in for the transaction.
type MemoryStore struct {
	mu       sync.RWMutex
	rulesets map[string]ast.Ruleset
	rules    map[string]ast.Rule
}

// NewMemoryStore creates an empty in-memory rule store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rulesets: make(map[string]ast.Ruleset),
		rules:    make(map[string]ast.Rule),
	}
}

// GetActiveRuleset returns the single active ruleset for the domain and
// jurisdiction with its active rules in rule_id order.
func (m *MemoryStore) GetActiveRuleset(ctx context.Context, domain, jurisdiction, documentType string) (*ActiveRuleset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []ast.Ruleset
	for _, rs := range m.rulesets {
		if rs.Domain == domain && rs.Jurisdiction == jurisdiction && rs.Status == ast.StatusActive {
			matches = append(matches, rs)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("domain %q jurisdiction %q: %w", domain, jurisdiction, ErrNoActiveRuleset)
	case 1:
	default:
		return nil, &AmbiguousRulesetError{Domain: domain, Jurisdiction: jurisdiction, Count: len(matches)}
	}

	ruleset := matches[0]

	var rules []ast.Rule
	for _, rule := range m.rules {
		if rule.RulesetID != ruleset.ID || !rule.IsActive {
			continue
		}
		if documentType != "" && !rule.AppliesTo(documentType) {
			continue
		}
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].RuleID < rules[j].RuleID })

	return &ActiveRuleset{Ruleset: ruleset, Rules: rules}, nil
}

// ImportRuleset mirrors the SQLite import semantics in memory.
func (m *MemoryStore) ImportRuleset(ctx context.Context, ruleset ast.Ruleset, rules []ast.Rule, activate bool) (*ImportSummary, error) {
	mode := ModeDraft
	if activate {
		mode = ModeActivate
	}

	summary := &ImportSummary{
		RulesetID:      ruleset.ID,
		RulesetVersion: ruleset.Version,
		Mode:           mode,
	}

	if ruleset.ID == "" {
		return nil, NewStorageError("memory", "import", fmt.Errorf("ruleset_id is required"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()

	existing, known := m.rulesets[ruleset.ID]
	switch {
	case known && !activate:
		// A draft import never touches a stored descriptor. Re-sweeping
		// a bundle that was already published must not demote it.
	case known:
		ruleset.Status = ast.StatusActive
		ruleset.ActivatedAt = now
		ruleset.CreatedAt = existing.CreatedAt
		ruleset.RuleCount = len(rules)
		m.rulesets[ruleset.ID] = ruleset
	default:
		ruleset.Status = ast.StatusDraft
		ruleset.CreatedAt = now
		ruleset.RuleCount = len(rules)
		if activate {
			ruleset.Status = ast.StatusActive
			ruleset.ActivatedAt = now
		}
		m.rulesets[ruleset.ID] = ruleset
	}

	for i := range rules {
		rule := rules[i]

		if err := validateRule(&rule); err != nil {
			summary.Errors = append(summary.Errors, ImportError{
				RuleID:  rule.RuleID,
				Message: err.Error(),
			})
			continue
		}

		rule.RulesetID = ruleset.ID
		rule.RulesetVersion = ruleset.Version
		if rule.Domain == "" {
			rule.Domain = ruleset.Domain
		}
		if rule.Jurisdiction == "" {
			rule.Jurisdiction = ruleset.Jurisdiction
		}
		if rule.DocumentType == "" {
			rule.DocumentType = ast.DocumentTypeAny
		}

		checksum, err := rule.ComputeChecksum()
		if err != nil {
			summary.Errors = append(summary.Errors, ImportError{
				RuleID:  rule.RuleID,
				Message: err.Error(),
			})
			continue
		}
		rule.Checksum = checksum

		_, exists := m.rules[rule.RuleID]
		switch {
		case exists && !activate:
			summary.SkippedExisting++
		case exists:
			m.rules[rule.RuleID] = rule
			summary.Updated++
		default:
			m.rules[rule.RuleID] = rule
			summary.Inserted++
		}
	}

	if activate {
		m.flipActiveLocked(&ruleset)
	}

	return summary, nil
}

// flipActiveLocked applies the activation flip; callers hold the write
// lock.
func (m *MemoryStore) flipActiveLocked(target *ast.Ruleset) {
	for id, rs := range m.rulesets {
		if rs.ID == target.ID {
			continue
		}
		if rs.Domain == target.Domain && rs.Jurisdiction == target.Jurisdiction && rs.Status == ast.StatusActive {
			rs.Status = ast.StatusArchived
			m.rulesets[id] = rs
		}
	}

	for id, rule := range m.rules {
		switch {
		case rule.RulesetID == target.ID:
			rule.IsActive = true
		case rule.Domain == target.Domain && rule.Jurisdiction == target.Jurisdiction:
			rule.IsActive = false
		default:
			continue
		}
		m.rules[id] = rule
	}
}

// ListRulesets returns every ruleset descriptor, ordered by domain,
// jurisdiction and version.
func (m *MemoryStore) ListRulesets(ctx context.Context) ([]ast.Ruleset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rulesets := make([]ast.Ruleset, 0, len(m.rulesets))
	for _, rs := range m.rulesets {
		rulesets = append(rulesets, rs)
	}
	sort.Slice(rulesets, func(i, j int) bool {
		a, b := rulesets[i], rulesets[j]
		if a.Domain != b.Domain {
			return a.Domain < b.Domain
		}
		if a.Jurisdiction != b.Jurisdiction {
			return a.Jurisdiction < b.Jurisdiction
		}
		return a.Version < b.Version
	})

	return rulesets, nil
}

// GetRule returns the stored rule for a rule ID.
func (m *MemoryStore) GetRule(ctx context.Context, ruleID string) (*ast.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rule, ok := m.rules[ruleID]
	if !ok {
		return nil, fmt.Errorf("rule %q: %w", ruleID, ErrRuleNotFound)
	}
	return &rule, nil
}
