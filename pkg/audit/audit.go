package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of audited event.
type Action string

const (
	// ActionRulesetImported is emitted after a draft import.
	ActionRulesetImported Action = "ruleset_imported"

	// ActionRulesetActivated is emitted after a publish or rollback.
	ActionRulesetActivated Action = "ruleset_activated"

	// ActionRulesEvaluated is emitted after one validation request.
	ActionRulesEvaluated Action = "rules_evaluated"

	// ActionSupplementSkipped is emitted when a supplemental domain has
	// no active ruleset and validation proceeds without it.
	ActionSupplementSkipped Action = "supplement_skipped"
)

// Event is one structured audit record.
type Event struct {
	// ID is a generated unique event identifier.
	ID string `json:"id"`

	// Time is when the event occurred.
	Time time.Time `json:"time"`

	// Action is the event kind.
	Action Action `json:"action"`

	// RuleID or RulesetID scope the event; either may be empty.
	RuleID    string `json:"rule_id,omitempty"`
	RulesetID string `json:"ruleset_id,omitempty"`

	Domain       string `json:"domain,omitempty"`
	Jurisdiction string `json:"jurisdiction,omitempty"`

	// Summary carries action-specific detail (import counts, outcome
	// tallies, rule diffs).
	Summary map[string]any `json:"summary,omitempty"`
}

// NewEvent creates an event with a generated ID and the current time.
func NewEvent(action Action) Event {
	return Event{
		ID:     uuid.NewString(),
		Time:   time.Now().UTC(),
		Action: action,
	}
}

// Sink receives audit events.
type Sink interface {
	// Record persists one event.
	Record(ctx context.Context, event Event) error

	// Close releases sink resources.
	Close() error
}

// NopSink discards every event.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(ctx context.Context, event Event) error { return nil }

// Close implements Sink.
func (NopSink) Close() error { return nil }

// MemorySink keeps events in memory for tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record implements Sink.
func (m *MemorySink) Record(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Close implements Sink.
func (m *MemorySink) Close() error { return nil }

// Events returns a copy of the recorded events.
func (m *MemorySink) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
