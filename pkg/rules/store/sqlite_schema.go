package store

// SchemaVersion is the current rule store schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the rule store schema.
const Schema = `
-- Ruleset descriptors
CREATE TABLE IF NOT EXISTS rulesets (
    ruleset_id TEXT PRIMARY KEY,
    domain TEXT NOT NULL,
    jurisdiction TEXT NOT NULL,
    ruleset_version TEXT NOT NULL,
    rulebook_version TEXT,
    status TEXT NOT NULL,
    location TEXT,
    rule_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    activated_at TIMESTAMP
);

-- Rules, keyed by stable rule_id. The full rule travels as JSON in
-- payload; the extracted columns exist for querying and the governance
-- flip.
CREATE TABLE IF NOT EXISTS rules (
    rule_id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    domain TEXT NOT NULL,
    jurisdiction TEXT NOT NULL,
    document_type TEXT NOT NULL DEFAULT 'any',
    severity TEXT NOT NULL DEFAULT 'fail',
    checksum TEXT NOT NULL,
    ruleset_id TEXT NOT NULL,
    ruleset_version TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for the loader's hot path and the governance flip
CREATE INDEX IF NOT EXISTS idx_rulesets_domain_jurisdiction ON rulesets(domain, jurisdiction, status);
CREATE INDEX IF NOT EXISTS idx_rules_ruleset ON rules(ruleset_id);
CREATE INDEX IF NOT EXISTS idx_rules_domain_jurisdiction ON rules(domain, jurisdiction);
CREATE INDEX IF NOT EXISTS idx_rules_active ON rules(is_active);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
