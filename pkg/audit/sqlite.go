package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// auditSchema creates the audit trail table.
const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
    id TEXT PRIMARY KEY,
    event_time TIMESTAMP NOT NULL,
    action TEXT NOT NULL,
    rule_id TEXT,
    ruleset_id TEXT,
    domain TEXT,
    jurisdiction TEXT,
    summary TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_event_time ON audit_events(event_time);
CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_events(action);
CREATE INDEX IF NOT EXISTS idx_audit_ruleset ON audit_events(ruleset_id);
`

// SQLiteSinkConfig configures the durable audit sink.
type SQLiteSinkConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteSink is a durable audit trail backed by SQLite. The CGO-free
// driver keeps the audit path buildable everywhere the engine runs.
type SQLiteSink struct {
	db         *sql.DB
	recordStmt *sql.Stmt
	logger     *slog.Logger
}

// NewSQLiteSink opens (or creates) the audit database.
func NewSQLiteSink(cfg SQLiteSinkConfig) (*SQLiteSink, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("audit db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(auditSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	stmt, err := db.Prepare(`
		INSERT INTO audit_events (id, event_time, action, rule_id, ruleset_id,
		                          domain, jurisdiction, summary)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare audit insert: %w", err)
	}

	logger := slog.Default().With("component", "audit.sqlite")
	logger.Info("audit sink initialized", "path", cfg.Path)

	return &SQLiteSink{
		db:         db,
		recordStmt: stmt,
		logger:     logger,
	}, nil
}

// Record persists one event.
func (s *SQLiteSink) Record(ctx context.Context, event Event) error {
	summary, err := json.Marshal(event.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode audit summary: %w", err)
	}

	_, err = s.recordStmt.ExecContext(ctx,
		event.ID, event.Time, string(event.Action),
		nullable(event.RuleID), nullable(event.RulesetID),
		nullable(event.Domain), nullable(event.Jurisdiction),
		string(summary),
	)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}

	return nil
}

// Query returns events recorded since the given time, newest first,
// capped at limit.
func (s *SQLiteSink) Query(ctx context.Context, since time.Time, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_time, action, rule_id, ruleset_id, domain, jurisdiction, summary
		FROM audit_events
		WHERE event_time >= ?
		ORDER BY event_time DESC
		LIMIT ?`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var action string
		var ruleID, rulesetID, domain, jurisdiction sql.NullString
		var summary string

		err := rows.Scan(&event.ID, &event.Time, &action,
			&ruleID, &rulesetID, &domain, &jurisdiction, &summary)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}

		event.Action = Action(action)
		event.RuleID = ruleID.String
		event.RulesetID = rulesetID.String
		event.Domain = domain.String
		event.Jurisdiction = jurisdiction.String
		if summary != "" {
			if err := json.Unmarshal([]byte(summary), &event.Summary); err != nil {
				return nil, fmt.Errorf("failed to decode audit summary: %w", err)
			}
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}

	return events, nil
}

// DeleteBefore removes events older than the cutoff and returns the
// number deleted. Used by the retention pruner.
func (s *SQLiteSink) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM audit_events WHERE event_time < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit events: %w", err)
	}
	return result.RowsAffected()
}

// Close releases the database connection.
func (s *SQLiteSink) Close() error {
	if s.recordStmt != nil {
		s.recordStmt.Close()
	}
	return s.db.Close()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
