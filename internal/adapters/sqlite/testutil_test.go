// Package sqlite_test contains integration tests for SQLite repositories.
//
// This file is the single point where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so tests always run against
// the authoritative schema; do not hardcode CREATE TABLE statements in test
// files.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/sift/internal/adapters/sqlite"
	"github.com/example/sift/internal/db"
	"github.com/example/sift/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedTag inserts a tag through the repository and returns its record.
func seedTag(t *testing.T, repo *sqlite.TagRepository, id, name string) *secondary.TagRecord {
	t.Helper()
	tag := &secondary.TagRecord{
		ID:          id,
		Name:        name,
		Description: "A test failure category description",
		Color:       "#EF4444",
		Examples:    []string{},
		CreatedAt:   "2025-06-01T10:00:00Z",
	}
	if err := repo.Create(context.Background(), tag); err != nil {
		t.Fatalf("failed to seed tag %s: %v", id, err)
	}
	return tag
}

// seedTrace upserts a trace through the repository and returns its record.
func seedTrace(t *testing.T, repo *sqlite.TraceRepository, id string, tagRefs ...string) *secondary.TraceRecord {
	t.Helper()
	if tagRefs == nil {
		tagRefs = []string{}
	}
	trace := &secondary.TraceRecord{
		ID:          id,
		UserInput:   "What snacks would I like?",
		AgentOutput: "Here are some recommendations.",
		Steps:       []secondary.TraceStepRecord{},
		Metadata:    map[string]any{},
		TagRefs:     tagRefs,
	}
	if err := repo.Upsert(context.Background(), trace); err != nil {
		t.Fatalf("failed to seed trace %s: %v", id, err)
	}
	return trace
}
