package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSink(t *testing.T) *SQLiteSink {
	t.Helper()

	sink, err := NewSQLiteSink(SQLiteSinkConfig{
		Path: filepath.Join(t.TempDir(), "audit.db"),
	})
	if err != nil {
		t.Fatalf("NewSQLiteSink: %v", err)
	}
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestSQLiteSinkRecordAndQuery(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	event := NewEvent(ActionRulesetActivated)
	event.RulesetID = "rs-1"
	event.Domain = "icc.ucp600"
	event.Jurisdiction = "global"
	event.Summary = map[string]any{"inserted": float64(3), "mode": "activate"}

	if err := sink.Record(ctx, event); err != nil {
		t.Fatalf("Record: %v", err)
	}

	events, err := sink.Query(ctx, time.Now().Add(-time.Minute), 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}

	got := events[0]
	if got.ID != event.ID || got.Action != ActionRulesetActivated {
		t.Errorf("event = %+v", got)
	}
	if got.RulesetID != "rs-1" || got.Domain != "icc.ucp600" {
		t.Errorf("scope = %s/%s", got.RulesetID, got.Domain)
	}
	if got.Summary["mode"] != "activate" {
		t.Errorf("summary = %v", got.Summary)
	}
}

func TestSQLiteSinkQueryWindow(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	old := NewEvent(ActionRulesEvaluated)
	old.Time = time.Now().UTC().Add(-48 * time.Hour)
	recent := NewEvent(ActionRulesEvaluated)

	if err := sink.Record(ctx, old); err != nil {
		t.Fatalf("Record old: %v", err)
	}
	if err := sink.Record(ctx, recent); err != nil {
		t.Fatalf("Record recent: %v", err)
	}

	events, err := sink.Query(ctx, time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 || events[0].ID != recent.ID {
		t.Errorf("expected only the recent event, got %d", len(events))
	}
}

func TestPrunerDeletesExpiredEvents(t *testing.T) {
	sink := newTestSink(t)
	ctx := context.Background()

	expired := NewEvent(ActionRulesEvaluated)
	expired.Time = time.Now().UTC().Add(-40 * 24 * time.Hour)
	kept := NewEvent(ActionRulesEvaluated)

	if err := sink.Record(ctx, expired); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := sink.Record(ctx, kept); err != nil {
		t.Fatalf("Record: %v", err)
	}

	pruner := NewPruner(sink, RetentionConfig{RetentionDays: 30})
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	events, err := sink.Query(ctx, time.Time{}, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 || events[0].ID != kept.ID {
		t.Errorf("expected only the kept event to remain")
	}
}

func TestPrunerDisabledRetention(t *testing.T) {
	sink := newTestSink(t)

	pruner := NewPruner(sink, RetentionConfig{})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("zero retention must not delete, got %d", deleted)
	}
}

func TestSchedulerRejectsInvalidSchedule(t *testing.T) {
	sink := newTestSink(t)
	pruner := NewPruner(sink, RetentionConfig{RetentionDays: 30, PruneSchedule: "not a cron"})

	scheduler := NewScheduler(pruner)
	if err := scheduler.Start(context.Background()); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestSchedulerEmptyScheduleIsNoop(t *testing.T) {
	sink := newTestSink(t)
	pruner := NewPruner(sink, RetentionConfig{RetentionDays: 30})

	scheduler := NewScheduler(pruner)
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	scheduler.Stop()
}
