package db

// SchemaSQL is the complete schema for fresh sift installs. It reflects the
// current state after all migrations.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// it via GetSchemaSQL(): if repository code references a column that does not
// exist here, tests fail immediately with "no such column" instead of
// drifting against a hand-rolled test schema.
//
// When adding columns or tables:
//  1. Add a migration in internal/db/migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Axial tags (the shared failure taxonomy)
CREATE TABLE IF NOT EXISTS tags (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE,
	description TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT '#808080',
	usage_count INTEGER NOT NULL DEFAULT 0,
	examples TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL
);

-- Traces (single source of truth for review state).
-- Structured fields (steps, metadata, tag_refs) are stored as JSON text.
-- rowid is stable across upserts and carries insertion order.
CREATE TABLE IF NOT EXISTS traces (
	id TEXT PRIMARY KEY,
	user_input TEXT NOT NULL,
	agent_output TEXT NOT NULL,
	system_prompt TEXT NOT NULL DEFAULT '',
	steps TEXT NOT NULL DEFAULT '[]',
	metadata TEXT NOT NULL DEFAULT '{}',
	reviewed INTEGER NOT NULL DEFAULT 0,
	verdict TEXT NOT NULL DEFAULT '' CHECK(verdict IN ('', 'pass', 'fail', 'defer')),
	open_code TEXT NOT NULL DEFAULT '',
	tag_refs TEXT NOT NULL DEFAULT '[]',
	reviewer_id TEXT NOT NULL DEFAULT '',
	reviewed_at TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_traces_reviewed ON traces(reviewed);
CREATE INDEX IF NOT EXISTS idx_traces_verdict ON traces(verdict);

-- Review sessions. Traces are referenced by id (trace_ids JSON array);
-- bodies live only in the traces table. Counters are recomputed from the
-- referenced traces, never patched incrementally.
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	trace_ids TEXT NOT NULL DEFAULT '[]',
	tag_snapshot TEXT NOT NULL DEFAULT '[]',
	mode TEXT NOT NULL CHECK(mode IN ('open_coding', 'axial_coding', 'combined')) DEFAULT 'combined',
	total_traces INTEGER NOT NULL DEFAULT 0,
	reviewed_count INTEGER NOT NULL DEFAULT 0,
	passed_count INTEGER NOT NULL DEFAULT 0,
	failed_count INTEGER NOT NULL DEFAULT 0,
	deferred_count INTEGER NOT NULL DEFAULT 0,
	randomize_order INTEGER NOT NULL DEFAULT 0,
	source TEXT NOT NULL DEFAULT 'upload' CHECK(source IN ('upload', 'braintrust', 'demo')),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
