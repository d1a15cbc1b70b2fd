package ast

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// NormalizedJSON returns the canonical JSON form of the rule's content:
// the rule marshaled to a map and re-marshaled with sorted keys, with the
// governance fields (checksum, is_active, ruleset binding) stripped.
// Two byte-different payloads that describe the same rule content
// normalize to identical bytes.
func (r *Rule) NormalizedJSON() ([]byte, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rule %q: %w", r.RuleID, err)
	}

	var content map[string]any
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("failed to normalize rule %q: %w", r.RuleID, err)
	}

	// Governance state is not rule content.
	delete(content, "checksum")
	delete(content, "is_active")
	delete(content, "ruleset_id")
	delete(content, "ruleset_version")

	// encoding/json writes map keys in sorted order, which makes the
	// round trip canonical.
	normalized, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to re-marshal rule %q: %w", r.RuleID, err)
	}

	return normalized, nil
}

// ComputeChecksum returns the hex-encoded SHA-256 of the rule's
// normalized JSON. Importing the same rule content twice always yields
// the same checksum.
func (r *Rule) ComputeChecksum() (string, error) {
	normalized, err := r.NormalizedJSON()
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(normalized)
	return fmt.Sprintf("%x", sum), nil
}
