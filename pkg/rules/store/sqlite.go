package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"lcopilot-hq/lcopilot/pkg/rules/ast"
)

// SQLiteConfig contains configuration for the SQLite rule store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better read concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/rules.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Admin over a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the rule store database and
// initializes the schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "rules.store.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("rule store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

// initialize sets up the schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// GetActiveRuleset returns the single active ruleset for the domain and
// jurisdiction, with its active rules in rule_id order.
func (s *SQLiteStore) GetActiveRuleset(ctx context.Context, domain, jurisdiction, documentType string) (*ActiveRuleset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ruleset_id, domain, jurisdiction, ruleset_version, rulebook_version,
		       status, location, rule_count, created_at, activated_at
		FROM rulesets
		WHERE domain = ? AND jurisdiction = ? AND status = ?`,
		domain, jurisdiction, string(ast.StatusActive),
	)
	if err != nil {
		return nil, NewStorageError("sqlite", "get_active_ruleset", err)
	}
	defer rows.Close()

	var rulesets []ast.Ruleset
	for rows.Next() {
		rs, err := scanRuleset(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan_ruleset", err)
		}
		rulesets = append(rulesets, *rs)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "get_active_ruleset", err)
	}

	switch len(rulesets) {
	case 0:
		return nil, fmt.Errorf("domain %q jurisdiction %q: %w", domain, jurisdiction, ErrNoActiveRuleset)
	case 1:
	default:
		return nil, &AmbiguousRulesetError{Domain: domain, Jurisdiction: jurisdiction, Count: len(rulesets)}
	}

	ruleset := rulesets[0]

	rules, err := s.loadRules(ctx, ruleset.ID, documentType)
	if err != nil {
		return nil, err
	}

	return &ActiveRuleset{Ruleset: ruleset, Rules: rules}, nil
}

// loadRules fetches the active rules of a ruleset, optionally narrowed to
// one document type.
func (s *SQLiteStore) loadRules(ctx context.Context, rulesetID, documentType string) ([]ast.Rule, error) {
	query := `SELECT payload FROM rules WHERE ruleset_id = ? AND is_active = 1`
	args := []any{rulesetID}

	if documentType != "" {
		query += ` AND document_type IN (?, ?)`
		args = append(args, documentType, ast.DocumentTypeAny)
	}
	query += ` ORDER BY rule_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "load_rules", err)
	}
	defer rows.Close()

	var rules []ast.Rule
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, NewStorageError("sqlite", "scan_rule", err)
		}
		var rule ast.Rule
		if err := json.Unmarshal([]byte(payload), &rule); err != nil {
			return nil, NewStorageError("sqlite", "decode_rule", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "load_rules", err)
	}

	return rules, nil
}

// ImportRuleset ingests a ruleset's rules inside a single transaction.
//
// Draft mode (activate=false) inserts only rule IDs that do not exist
// yet; anything already present is counted under skipped_existing and
// left byte-for-byte untouched. Activate mode upserts every valid payload
// rule, then flips is_active so that exactly the target ruleset's rules
// are active for its domain and jurisdiction, and archives any previously
// active ruleset of the same scope. Per-rule validation failures are
// recorded in the summary and do not abort the batch.
func (s *SQLiteStore) ImportRuleset(ctx context.Context, ruleset ast.Ruleset, rules []ast.Rule, activate bool) (*ImportSummary, error) {
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
		return nil, NewStorageError("sqlite", "import", fmt.Errorf("ruleset_id is required"))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, NewStorageError("sqlite", "begin_import", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	if err := s.upsertRuleset(ctx, tx, &ruleset, len(rules), activate, now); err != nil {
		return nil, err
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

		// Bind the rule to its owning ruleset and recompute the content
		// hash so change detection stays exact.
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

		var exists bool
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) > 0 FROM rules WHERE rule_id = ?`, rule.RuleID,
		).Scan(&exists)
		if err != nil {
			return nil, NewStorageError("sqlite", "check_rule_exists", err)
		}

		switch {
		case exists && !activate:
			// Draft uploads never overwrite a published rule.
			summary.SkippedExisting++

		case exists:
			if err := s.updateRule(ctx, tx, &rule, now); err != nil {
				return nil, err
			}
			summary.Updated++

		default:
			if err := s.insertRule(ctx, tx, &rule, now); err != nil {
				return nil, err
			}
			summary.Inserted++
		}
	}

	if activate {
		if err := s.flipActive(ctx, tx, &ruleset, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, NewStorageError("sqlite", "commit_import", err)
	}

	s.logger.Info("ruleset imported",
		"ruleset_id", ruleset.ID,
		"ruleset_version", ruleset.Version,
		"mode", string(mode),
		"inserted", summary.Inserted,
		"updated", summary.Updated,
		"skipped_existing", summary.SkippedExisting,
		"errors", len(summary.Errors),
	)

	return summary, nil
}

// upsertRuleset writes the ruleset descriptor. Draft imports insert the
// descriptor only when the ruleset_id is new; an existing descriptor,
// whatever its lifecycle state, is left untouched so a re-swept bundle
// can never demote a published ruleset. Activation replaces it.
func (s *SQLiteStore) upsertRuleset(ctx context.Context, tx *sql.Tx, ruleset *ast.Ruleset, ruleCount int, activate bool, now time.Time) error {
	status := ast.StatusDraft
	var activatedAt any
	conflict := `ON CONFLICT(ruleset_id) DO NOTHING`
	if activate {
		status = ast.StatusActive
		activatedAt = now
		conflict = `ON CONFLICT(ruleset_id) DO UPDATE SET
		    ruleset_version = excluded.ruleset_version,
		    rulebook_version = excluded.rulebook_version,
		    status = excluded.status,
		    location = excluded.location,
		    rule_count = excluded.rule_count,
		    activated_at = excluded.activated_at`
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO rulesets (ruleset_id, domain, jurisdiction, ruleset_version,
		                      rulebook_version, status, location, rule_count,
		                      created_at, activated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`+conflict,
		ruleset.ID, ruleset.Domain, ruleset.Jurisdiction, ruleset.Version,
		ruleset.RulebookVersion, string(status), ruleset.Location, ruleCount,
		now, activatedAt,
	)
	if err != nil {
		return NewStorageError("sqlite", "upsert_ruleset", err)
	}
	return nil
}

// insertRule inserts a new rule row.
func (s *SQLiteStore) insertRule(ctx context.Context, tx *sql.Tx, rule *ast.Rule, now time.Time) error {
	payload, err := json.Marshal(rule)
	if err != nil {
		return NewStorageError("sqlite", "encode_rule", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rules (rule_id, payload, domain, jurisdiction, document_type,
		                   severity, checksum, ruleset_id, ruleset_version,
		                   is_active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		rule.RuleID, string(payload), rule.Domain, rule.Jurisdiction,
		rule.DocumentType, string(rule.EffectiveSeverity()), rule.Checksum,
		rule.RulesetID, rule.RulesetVersion, now,
	)
	if err != nil {
		return NewStorageError("sqlite", "insert_rule", err)
	}
	return nil
}

// updateRule replaces a rule row in place (activate path only).
func (s *SQLiteStore) updateRule(ctx context.Context, tx *sql.Tx, rule *ast.Rule, now time.Time) error {
	payload, err := json.Marshal(rule)
	if err != nil {
		return NewStorageError("sqlite", "encode_rule", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE rules SET payload = ?, domain = ?, jurisdiction = ?,
		       document_type = ?, severity = ?, checksum = ?,
		       ruleset_id = ?, ruleset_version = ?, updated_at = ?
		WHERE rule_id = ?`,
		string(payload), rule.Domain, rule.Jurisdiction, rule.DocumentType,
		string(rule.EffectiveSeverity()), rule.Checksum, rule.RulesetID,
		rule.RulesetVersion, now, rule.RuleID,
	)
	if err != nil {
		return NewStorageError("sqlite", "update_rule", err)
	}
	return nil
}

// flipActive makes the target ruleset the single active one for its
// domain and jurisdiction. Runs inside the import transaction so readers
// never observe a half-applied flip.
func (s *SQLiteStore) flipActive(ctx context.Context, tx *sql.Tx, ruleset *ast.Ruleset, now time.Time) error {
	// Archive any other ruleset of the same scope.
	_, err := tx.ExecContext(ctx, `
		UPDATE rulesets SET status = ?
		WHERE domain = ? AND jurisdiction = ? AND ruleset_id != ? AND status = ?`,
		string(ast.StatusArchived), ruleset.Domain, ruleset.Jurisdiction,
		ruleset.ID, string(ast.StatusActive),
	)
	if err != nil {
		return NewStorageError("sqlite", "archive_rulesets", err)
	}

	// Deactivate every rule of the same scope, then activate the target
	// ruleset's rules. Updating the payload flag keeps the stored JSON
	// consistent with the column.
	_, err = tx.ExecContext(ctx, `
		UPDATE rules SET is_active = 0,
		       payload = json_set(payload, '$.is_active', json('false')),
		       updated_at = ?
		WHERE domain = ? AND jurisdiction = ? AND ruleset_id != ?`,
		now, ruleset.Domain, ruleset.Jurisdiction, ruleset.ID,
	)
	if err != nil {
		return NewStorageError("sqlite", "deactivate_rules", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE rules SET is_active = 1,
		       payload = json_set(payload, '$.is_active', json('true')),
		       updated_at = ?
		WHERE ruleset_id = ?`,
		now, ruleset.ID,
	)
	if err != nil {
		return NewStorageError("sqlite", "activate_rules", err)
	}

	return nil
}

// ListRulesets returns every ruleset descriptor ordered by domain,
// jurisdiction and version.
func (s *SQLiteStore) ListRulesets(ctx context.Context) ([]ast.Ruleset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ruleset_id, domain, jurisdiction, ruleset_version, rulebook_version,
		       status, location, rule_count, created_at, activated_at
		FROM rulesets
		ORDER BY domain, jurisdiction, ruleset_version`)
	if err != nil {
		return nil, NewStorageError("sqlite", "list_rulesets", err)
	}
	defer rows.Close()

	var rulesets []ast.Ruleset
	for rows.Next() {
		rs, err := scanRuleset(rows)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan_ruleset", err)
		}
		rulesets = append(rulesets, *rs)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list_rulesets", err)
	}

	return rulesets, nil
}

// GetRule returns the stored rule for a rule ID.
func (s *SQLiteStore) GetRule(ctx context.Context, ruleID string) (*ast.Rule, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM rules WHERE rule_id = ?`, ruleID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("rule %q: %w", ruleID, ErrRuleNotFound)
	}
	if err != nil {
		return nil, NewStorageError("sqlite", "get_rule", err)
	}

	var rule ast.Rule
	if err := json.Unmarshal([]byte(payload), &rule); err != nil {
		return nil, NewStorageError("sqlite", "decode_rule", err)
	}

	return &rule, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("rule store closed")
	return nil
}

// scanRuleset scans one rulesets row.
func scanRuleset(rows *sql.Rows) (*ast.Ruleset, error) {
	var rs ast.Ruleset
	var status string
	var location sql.NullString
	var rulebookVersion sql.NullString
	var activatedAt sql.NullTime

	err := rows.Scan(
		&rs.ID, &rs.Domain, &rs.Jurisdiction, &rs.Version, &rulebookVersion,
		&status, &location, &rs.RuleCount, &rs.CreatedAt, &activatedAt,
	)
	if err != nil {
		return nil, err
	}

	rs.Status = ast.RulesetStatus(status)
	if location.Valid {
		rs.Location = location.String
	}
	if rulebookVersion.Valid {
		rs.RulebookVersion = rulebookVersion.String
	}
	if activatedAt.Valid {
		rs.ActivatedAt = activatedAt.Time
	}

	return &rs, nil
}
